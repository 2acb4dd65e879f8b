package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedProfileNilTagsMarshalAsArray(t *testing.T) {
	data, err := json.Marshal(GeneratedProfile{Description: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"x","tags":[]}`, string(data))
}

func TestEmptyProfile(t *testing.T) {
	p := EmptyProfile()
	assert.True(t, p.IsEmpty())
	assert.NotNil(t, p.Tags)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"description":"","tags":[]}`, string(data))
}

func TestChannelPayloadAcceptsAuxiliaryKeys(t *testing.T) {
	raw := `{
		"name": "兎田ぺこら",
		"channel_desc": "ホロライブ3期生",
		"latest_video_title": "マイクラ",
		"latest_video_desc": "建築",
		"video_tags": ["ゲーム"],
		"unknown_key": 1
	}`

	var payload ChannelPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "兎田ぺこら", payload.Name)
	assert.Equal(t, "ホロライブ3期生", payload.ChannelDesc)
	assert.JSONEq(t, `["ゲーム"]`, string(payload.VideoTags))
}

func TestChannelPayloadToleratesAuxiliaryShapes(t *testing.T) {
	raw := `{
		"name": "x",
		"channel_desc": "y",
		"latest_video_title": null,
		"latest_video_desc": 5,
		"video_tags": "歌,ゲーム"
	}`

	var payload ChannelPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "x", payload.Name)
	assert.Equal(t, "y", payload.ChannelDesc)
	assert.Equal(t, "5", string(payload.LatestVideoDesc))
}

func TestChannelPayloadRendersScalarsAsText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ChannelPayload
	}{
		{"number name", `{"name": 123, "channel_desc": "d"}`, ChannelPayload{Name: "123", ChannelDesc: "d"}},
		{"float desc", `{"name": "n", "channel_desc": 1.5}`, ChannelPayload{Name: "n", ChannelDesc: "1.5"}},
		{"bool", `{"name": true}`, ChannelPayload{Name: "true"}},
		{"null", `{"name": null, "channel_desc": null}`, ChannelPayload{}},
		{"array", `{"name": ["a", 1]}`, ChannelPayload{Name: `["a",1]`}},
		{"missing", `{}`, ChannelPayload{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload ChannelPayload
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &payload))
			assert.Equal(t, tt.want, payload)
		})
	}
}

func TestChannelPayloadRejectsNonObject(t *testing.T) {
	var payload ChannelPayload
	assert.Error(t, json.Unmarshal([]byte(`["name"]`), &payload))
	assert.Error(t, json.Unmarshal([]byte(`"name"`), &payload))
}
