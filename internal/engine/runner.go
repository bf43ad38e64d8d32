package engine

import (
	"context"
	"fmt"

	"github.com/regweaver/regweaver/internal/script"
)

// runSandboxed executes an imperative program body with exactly the given
// bindings. A panic inside the program is caught at this boundary and
// converted into an error; it never crashes the host process.
func runSandboxed(ctx context.Context, program script.ProgramFunc, env *script.Bindings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok {
				err = fmt.Errorf("program panicked: %w", perr)
				return
			}
			err = fmt.Errorf("program panicked: %v", r)
		}
	}()

	return program(ctx, env)
}
