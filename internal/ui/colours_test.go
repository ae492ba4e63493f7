package ui_test

import (
	"testing"

	"github.com/jrsteele09/go-ticket-client/internal/ui"
	"github.com/stretchr/testify/require"
)

func TestColourize(t *testing.T) {
	require.Equal(t, "open", ui.Colourize(false, ui.Green, "open"))
	require.Equal(t, ui.Green+"open"+ui.ResetColor, ui.Colourize(true, ui.Green, "open"))
	require.Equal(t, "open", ui.Colourize(true, "", "open"))
}

func TestMethod(t *testing.T) {
	require.Equal(t, " GET    ", ui.Method(false, "GET"))
	require.Equal(t, ui.Blue+" POST   "+ui.ResetColor, ui.Method(true, "POST"))
	require.Equal(t, ui.Gray+" TRACE  "+ui.ResetColor, ui.Method(true, "TRACE"))
}
