package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		keys    EnvelopeKeys
		want    Envelope
		wantErr bool
	}{
		{
			name: "netbox style with extra keys",
			body: `{"event":"created","timestamp":"2024-01-01","model":"tenant","username":"admin","data":{"name":"acme"}}`,
			want: Envelope{Model: "tenant", Event: "created", Data: []byte(`{"name":"acme"}`)},
		},
		{
			name: "custom keys",
			body: `{"model":"tenant","action":"create","data":{}}`,
			keys: EnvelopeKeys{Event: "action"},
			want: Envelope{Model: "tenant", Event: "create", Data: []byte(`{}`)},
		},
		{
			name: "missing data becomes null",
			body: `{"model":"tenant","event":"deleted"}`,
			want: Envelope{Model: "tenant", Event: "deleted", Data: []byte(`null`)},
		},
		{name: "missing event", body: `{"model":"tenant","data":{}}`, wantErr: true},
		{name: "event not a string", body: `{"model":"tenant","event":3}`, wantErr: true},
		{
			name: "empty and padded values pass through",
			body: `{"model":"","event":" created "}`,
			want: Envelope{Model: "", Event: " created ", Data: []byte(`null`)},
		},
		{name: "model is null", body: `{"model":null,"event":"created"}`, wantErr: true},
		{name: "not an object", body: `[1]`, wantErr: true},
		{name: "null body", body: `null`, wantErr: true},
		{name: "garbage", body: `{`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEnvelope([]byte(tc.body), tc.keys)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrMalformedEnvelope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want.Model, got.Model)
			assert.Equal(t, tc.want.Event, got.Event)
			assert.JSONEq(t, string(tc.want.Data), string(got.Data))
		})
	}
}
