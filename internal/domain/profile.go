package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ChannelPayload is the request read from stdin.
// The latest_video_* and video_tags keys are kept raw: they are accepted in
// any shape but not rendered into any prompt yet.
type ChannelPayload struct {
	Name             string          `json:"name"`
	ChannelDesc      string          `json:"channel_desc"`
	LatestVideoTitle json.RawMessage `json:"latest_video_title,omitempty"`
	LatestVideoDesc  json.RawMessage `json:"latest_video_desc,omitempty"`
	VideoTags        json.RawMessage `json:"video_tags,omitempty"`
}

// UnmarshalJSON renders scalar name and channel_desc values as text, so
// {"name": 123} decodes to Name "123". Only a non-object payload fails.
func (p *ChannelPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name             json.RawMessage `json:"name"`
		ChannelDesc      json.RawMessage `json:"channel_desc"`
		LatestVideoTitle json.RawMessage `json:"latest_video_title"`
		LatestVideoDesc  json.RawMessage `json:"latest_video_desc"`
		VideoTags        json.RawMessage `json:"video_tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = ChannelPayload{
		Name:             textValue(raw.Name),
		ChannelDesc:      textValue(raw.ChannelDesc),
		LatestVideoTitle: raw.LatestVideoTitle,
		LatestVideoDesc:  raw.LatestVideoDesc,
		VideoTags:        raw.VideoTags,
	}
	return nil
}

// textValue returns strings unquoted, null as "", numbers and booleans in
// their literal form, and arrays or objects as compact JSON.
func textValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return ""
	}

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	}
}

// GeneratedProfile is the description/tags pair written to stdout.
type GeneratedProfile struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// EmptyProfile returns the degraded result.
func EmptyProfile() GeneratedProfile {
	return GeneratedProfile{Description: "", Tags: []string{}}
}

// IsEmpty reports whether the profile carries no generated content.
func (p GeneratedProfile) IsEmpty() bool {
	return p.Description == "" && len(p.Tags) == 0
}

// MarshalJSON keeps "tags" an array even when Tags is nil.
func (p GeneratedProfile) MarshalJSON() ([]byte, error) {
	type alias GeneratedProfile
	out := alias(p)
	if out.Tags == nil {
		out.Tags = []string{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
