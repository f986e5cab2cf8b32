package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jusfiscal/config"
)

func TestSendSimulatedWithoutSMTPHost(t *testing.T) {
	s := NewSender(&config.Config{SMTPFrom: "contato@jusfiscal.com.br"}, zap.NewNop())
	require.True(t, s.Simulated())

	id, err := s.Send("dest@empresa.com.br", "Assunto", "Corpo")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "email_sim_"))
}

func TestSimulatedReflectsConfig(t *testing.T) {
	s := NewSender(&config.Config{SMTPHost: "smtp.example.com"}, zap.NewNop())
	assert.False(t, s.Simulated())
}
