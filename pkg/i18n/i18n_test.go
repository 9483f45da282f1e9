package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/fastygo/tracker/domain"
)

func TestNegotiate(t *testing.T) {
	tr, err := New("es")
	require.NoError(t, err)

	assert.Equal(t, language.Spanish, tr.Negotiate(""))
	assert.Equal(t, language.English, tr.Negotiate("en-US,en;q=0.9"))
	assert.Equal(t, language.Spanish, tr.Negotiate("es-MX"))
	assert.Equal(t, language.Spanish, tr.Negotiate("!!garbage"))
}

func TestTranslate(t *testing.T) {
	tr, err := New("es")
	require.NoError(t, err)

	assert.Equal(t, "Proyecto creado exitosamente!", tr.Translate("", domain.MsgProjectCreated))
	assert.Equal(t, "Project created successfully!", tr.Translate("en", domain.MsgProjectCreated))
	assert.Equal(t, "Cuenta creada para ana! Ahora puedes iniciar sesión.", tr.Translate("es", domain.MsgAccountCreated, "ana"))
}

func TestEveryKeyHasBothLanguages(t *testing.T) {
	for key := range spanish {
		_, ok := english[key]
		assert.True(t, ok, "missing english text for %s", key)
	}
	assert.Equal(t, len(spanish), len(english))
}

func TestEnglishDefault(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)
	assert.Equal(t, language.English, tr.Negotiate(""))
	assert.Equal(t, language.English, tr.Negotiate("de"))
}
