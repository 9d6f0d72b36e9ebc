package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/tutorlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
	"github.com/yungbote/tutorlog-backend/internal/services"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "token"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	assert.NotNil(t, cmd.RunE)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LOG_MODE", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_SECRET_KEY", "cli-secret")

	userID := uuid.New()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", userID.String()})
	require.NoError(t, cmd.Execute())

	auth := services.NewAuthService(logger.Nop(), "cli-secret", "", time.Hour)
	ctx, err := auth.SetContextFromToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, ctxutil.GetRequestData(ctx).UserID)
}

func TestTokenCommandRejectsBadUser(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--user", "nope"})
	require.Error(t, cmd.Execute())
}
