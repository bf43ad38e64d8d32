package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/regweaver/regweaver/internal/actions"
	"github.com/regweaver/regweaver/internal/engine"
	"github.com/regweaver/regweaver/internal/script"
	"github.com/regweaver/regweaver/internal/templates"
	"github.com/regweaver/regweaver/internal/tx"
	rwerrors "github.com/regweaver/regweaver/pkg/errors"
)

func TestResolveKnownTemplates(t *testing.T) {
	t.Parallel()

	for name, kind := range map[string]script.Kind{
		"two-wallet-send":                    script.Declarative,
		"Replace-By-Fee Transaction Example": script.Imperative,
		"Multisig CPFP Test":                 script.Imperative,
	} {
		s, err := templates.Resolve(name)
		require.NoError(t, err, name)
		require.Equal(t, kind, s.Kind, name)
	}
}

// The catalog key and the script's own name must never drift apart: the name
// a listing shows is the name Resolve accepts.
func TestCatalogKeysMatchScriptNames(t *testing.T) {
	t.Parallel()

	for _, entry := range templates.List() {
		s, err := templates.Resolve(entry.Name)
		require.NoError(t, err, entry.Name)
		require.Equal(t, entry.Name, s.Name)
	}
}

func TestResolveUnknownTemplate(t *testing.T) {
	t.Parallel()

	_, err := templates.Resolve("No Such Scenario")

	var notFound *rwerrors.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "No Such Scenario", notFound.Name)
}

func TestListIsSortedAndComplete(t *testing.T) {
	t.Parallel()

	entries := templates.List()
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.Less(t, entries[i-1].Name, entries[i].Name)
	}
	for _, entry := range entries {
		require.NotEmpty(t, entry.Description)
	}
}

// Every template must complete under dry-run: previews are the first thing
// users run.
func TestTemplatesSucceedUnderDryRun(t *testing.T) {
	for _, entry := range templates.List() {
		entry := entry
		t.Run(entry.Name, func(t *testing.T) {
			s, err := templates.Resolve(entry.Name)
			require.NoError(t, err)

			ec, err := engine.NewContext(engine.Options{DryRun: true}, nil, nil, nil)
			require.NoError(t, err)

			it := engine.NewInterpreter(actions.DefaultRegistry())
			report := it.Execute(context.Background(), ec, s)

			require.True(t, report.Success, "report error: %v", report.Err)
			for _, rec := range ec.Bindings.Transactions {
				require.Equal(t, tx.StatusSimulated, rec.Status)
			}
		})
	}
}

func TestTwoWalletSendTemplateShape(t *testing.T) {
	t.Parallel()

	s, err := templates.Resolve("two-wallet-send")
	require.NoError(t, err)
	require.Len(t, s.Steps, 7)
	require.Equal(t, actions.CreateWallet, s.Steps[0].Action)
	require.Equal(t, actions.BroadcastTransaction, s.Steps[5].Action)
}
