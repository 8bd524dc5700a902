package types

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"
)

func TestParseConfiguration(t *testing.T) {
	cases := []struct {
		raw  string
		want Configuration
	}{
		{raw: "Debug", want: ConfigurationDebug},
		{raw: "debug", want: ConfigurationDebug},
		{raw: "RELEASE", want: ConfigurationRelease},
		{raw: " relwithdebinfo ", want: ConfigurationRelWithDebInfo},
		{raw: "MinSizeRel", want: ConfigurationMinSizeRel},
	}
	for _, tc := range cases {
		got, err := ParseConfiguration(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got)
	}
}

func TestParseConfigurationUnknown(t *testing.T) {
	_, err := ParseConfiguration("Fast")
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	require.Contains(t, err.Error(), "Fast")
}

func TestConfigurationDefaultIsDebug(t *testing.T) {
	require.Equal(t, ConfigurationDebug, ConfigurationDefault)
}
