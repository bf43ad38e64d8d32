package script

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	rwerrors "github.com/regweaver/regweaver/pkg/errors"
)

const validScript = `
name: two-wallet-send
description: fund alice, pay bob
version: "1.0"
steps:
  - action: CREATE_WALLET
    params:
      name: alice
  - action: MINE_BLOCKS
    params:
      count: 101
      toWallet: alice
`

func TestParseBytesValidScript(t *testing.T) {
	t.Parallel()

	s, err := ParseBytes("scenario.yaml", []byte(validScript))
	require.NoError(t, err)

	require.Equal(t, "two-wallet-send", s.Name)
	require.Equal(t, Declarative, s.Kind)
	require.Len(t, s.Steps, 2)
	require.Equal(t, "CREATE_WALLET", s.Steps[0].Action)

	name, err := s.Steps[0].Params.String("name")
	require.NoError(t, err)
	require.Equal(t, "alice", name)

	count, err := s.Steps[1].Params.Int64("count")
	require.NoError(t, err)
	require.EqualValues(t, 101, count)
}

func TestParseBytesMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes("scenario.yaml", []byte("steps: [unclosed"))
	var parseErr *rwerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "scenario.yaml", parseErr.Path)
}

func TestParseBytesMissingName(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes("scenario.yaml", []byte("steps:\n  - action: WAIT\n"))
	var parseErr *rwerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Contains(t, err.Error(), "Name")
}

func TestParseBytesEmptySteps(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes("scenario.yaml", []byte("name: empty\n"))
	var parseErr *rwerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Parse(filepath.Join(t.TempDir(), "absent.yaml"))
	var parseErr *rwerrors.ParseError
	require.ErrorAs(t, err, &parseErr)

	var notFound *rwerrors.TemplateNotFoundError
	require.False(t, stdErrors.As(err, &notFound))
}

func TestParseFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScript), 0o644))

	s, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "two-wallet-send", s.Name)
}

func TestParamsOutputs(t *testing.T) {
	t.Parallel()

	p := Params{"outputs": []any{
		map[string]any{"bcrt1qaaa": 5.0},
		map[string]any{"bcrt1qbbb": 2},
	}}

	outputs, err := p.Outputs("outputs")
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	require.InDelta(t, 5.0, outputs[0].Amount, 1e-9)

	_, err = p.Outputs("missing")
	require.Error(t, err)

	bad := Params{"outputs": "nope"}
	_, err = bad.Outputs("outputs")
	require.Error(t, err)
}

func TestParamsTypeErrors(t *testing.T) {
	t.Parallel()

	p := Params{"count": "many", "amount": true}

	_, err := p.Int64("count")
	require.Error(t, err)

	_, err = p.Float("amount")
	require.Error(t, err)

	_, err = p.String("absent")
	require.Error(t, err)
}
