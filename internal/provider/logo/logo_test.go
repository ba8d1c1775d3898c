package logo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrder(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "snake uri", in: `{"logo_uri":"a"}`, want: "a"},
		{name: "camel url", in: `{"logoUrl":"b"}`, want: "b"},
		{name: "upper uri", in: `{"logoURI":"c"}`, want: "c"},
		{name: "snake url", in: `{"logo_url":"d"}`, want: "d"},
		{name: "plain", in: `{"logo":"e"}`, want: "e"},
		{name: "first wins", in: `{"logo":"e","logo_uri":"a"}`, want: "a"},
		{name: "empty skipped", in: `{"logo_uri":"","logo":"e"}`, want: "e"},
		{name: "non string skipped", in: `{"logoUrl":null,"logoURI":1,"logo":"e"}`, want: "e"},
		{name: "missing", in: `{"symbol":"SUI"}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindRejectsNonObject(t *testing.T) {
	_, err := Find([]byte(`"logo"`))
	assert.Error(t, err)
}
