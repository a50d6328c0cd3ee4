package api

import (
	"encoding/json"
	"fmt"

	"github.com/agile-geoscience/pickthat/internal/heatmap"
)

// Image is an image record from the service.
type Image struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Link      string `json:"link,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	PickStyle string `json:"pickstyle"`

	// Extra holds response fields not listed above.
	Extra map[string]json.RawMessage `json:"-"`
}

// Spec converts the record into the heatmap image description.
func (i Image) Spec() (heatmap.ImageSpec, error) {
	style, err := heatmap.ParsePickStyle(i.PickStyle)
	if err != nil {
		return heatmap.ImageSpec{}, fmt.Errorf("image %s: %w", i.ID, err)
	}
	spec := heatmap.ImageSpec{Width: i.Width, Height: i.Height, Style: style}
	if err := spec.Validate(); err != nil {
		return heatmap.ImageSpec{}, fmt.Errorf("image %s: %w", i.ID, err)
	}
	return spec, nil
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (i *Image) UnmarshalJSON(data []byte) error {
	type plain Image
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, "id", "title", "link", "width", "height", "pickstyle")
	if err != nil {
		return err
	}
	*i = Image(p)
	i.Extra = extra
	return nil
}

// Pick is one user's pick submission for an image.
type Pick struct {
	ID       string `json:"id,omitempty"`
	ImageKey string `json:"image_key,omitempty"`
	UserID   string `json:"user_id"`
	Cohort   string `json:"cohort,omitempty"`

	// Picks is the raw coordinate array, [[x,y],...] or [[x,y,group],...],
	// possibly JSON-string encoded.
	Picks json.RawMessage `json:"picks"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (p *Pick) UnmarshalJSON(data []byte) error {
	type plain Pick
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraFields(data, "id", "image_key", "user_id", "cohort", "picks")
	if err != nil {
		return err
	}
	*p = Pick(v)
	p.Extra = extra
	return nil
}

// HeatmapPick parses the coordinates into a heatmap pick.
func (p Pick) HeatmapPick() (heatmap.Pick, error) {
	g, err := heatmap.ParseGeometry(p.Picks)
	if err != nil {
		return heatmap.Pick{}, fmt.Errorf("pick of user %s: %w", p.UserID, err)
	}
	return heatmap.Pick{UserID: p.UserID, Cohort: p.Cohort, Geometry: g}, nil
}

// User is a user record from the service.
type User struct {
	UserID string `json:"user_id"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraFields(data, "user_id")
	if err != nil {
		return err
	}
	*u = User(v)
	u.Extra = extra
	return nil
}

// extraFields returns the members of a JSON object not named in known.
func extraFields(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
