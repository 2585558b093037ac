package app

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authlab/members/internal/infrastructure/config"
)

func TestClose_ReverseOrderAndJoinedErrors(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	a := &App{log: zerolog.Nop()}
	for i := 0; i < 3; i++ {
		i := i
		a.closers = append(a.closers, func(context.Context) error {
			order = append(order, i)
			if i == 1 {
				return boom
			}
			return nil
		})
	}

	err := a.Close(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{2, 1, 0}, order)

	require.NoError(t, a.Close(context.Background()), "second close is a no-op")
}

func TestPublicDir(t *testing.T) {
	dir := t.TempDir()

	a := &App{cfg: config.Config{PublicDir: dir}, log: zerolog.Nop()}
	assert.Equal(t, dir, a.publicDir())

	a.cfg.PublicDir = dir + "/missing"
	assert.Empty(t, a.publicDir())

	a.cfg.PublicDir = ""
	assert.Empty(t, a.publicDir())
}
