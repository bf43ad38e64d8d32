package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/regweaver/regweaver/internal/logger"
	"github.com/regweaver/regweaver/internal/node"
)

func TestCreateReturnsRefWithAddress(t *testing.T) {
	svc := NewService(node.NewSimulator(), false, nil)

	ref, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", ref.Name)
	require.NotEmpty(t, ref.Address)
	require.False(t, ref.Simulated)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(node.NewSimulator(), false, nil)

	_, err := svc.Create(context.Background(), "")
	require.Error(t, err)
}

func TestCreateDryRunMarksSimulated(t *testing.T) {
	svc := NewService(node.NewSimulator(), true, nil)

	ref, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ref.Simulated)
}

func TestBalanceDryRunSkipsQuery(t *testing.T) {
	capture := logger.NewCapture()
	log, err := logger.New(logger.Options{Level: "warn", Writer: capture})
	require.NoError(t, err)

	svc := NewService(node.NewSimulator(), true, log)

	amount, err := svc.Balance(context.Background(), "alice")
	require.NoError(t, err)
	require.Zero(t, amount)
	require.True(t, strings.Contains(strings.Join(capture.Lines(), "\n"), "synthesized"),
		"the synthetic zero is called out in the log")
}

func TestNewAddressDerivesFreshAddress(t *testing.T) {
	svc := NewService(node.NewSimulator(), false, nil)

	ref, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	addr, err := svc.NewAddress(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, addr)
	require.NotEqual(t, ref.Address, addr)
}

func TestMineReturnsHashesInOrder(t *testing.T) {
	svc := NewService(node.NewSimulator(), false, nil)

	hashes, err := svc.Mine(context.Background(), 3, "bcrt1qaaa")
	require.NoError(t, err)
	require.Len(t, hashes, 3)

	_, err = svc.Mine(context.Background(), 0, "bcrt1qaaa")
	require.Error(t, err)
}
