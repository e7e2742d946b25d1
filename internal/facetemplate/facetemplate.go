package facetemplate

import (
	"encoding/json"

	"github.com/frahmantamala/access-bridge/internal/user"
)

// FaceTemplate is the engine-facing view of one ledger row plus the photo
// payload derived from the year-scoped photo tables. Identity is
// (UserID, Role); ids alone collide across roles.
type FaceTemplate struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"user_id"`
	Role           user.Role  `json:"role"`
	UserName       string     `json:"user_name"`
	FaceData       string     `json:"face_data,omitempty"`
	PhotoData      string     `json:"photo_data,omitempty"` // base64
	EnrollmentYear string     `json:"enrollment_year"`
	SyncedDevices  *DeviceSet `json:"synced_devices"`
}

// DeviceSet is the set of device names a template has been acknowledged by.
// Membership only grows, adds are idempotent, and the JSON form is the
// ordered list the ledger persists.
type DeviceSet struct {
	names []string
}

func NewDeviceSet(names ...string) *DeviceSet {
	s := &DeviceSet{}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name and reports whether the set changed.
func (s *DeviceSet) Add(name string) bool {
	if s.Contains(name) {
		return false
	}
	s.names = append(s.names, name)
	return true
}

func (s *DeviceSet) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func (s *DeviceSet) Len() int {
	return len(s.names)
}

// Names returns the device names in insertion order.
func (s *DeviceSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *DeviceSet) MarshalJSON() ([]byte, error) {
	if s.names == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.names)
}

func (s *DeviceSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	s.names = nil
	for _, n := range names {
		s.Add(n)
	}
	return nil
}

// ParseDeviceSet decodes the ledger's serialized form. Empty input means an
// empty set, matching rows created before the column had a default.
func ParseDeviceSet(serialized string) (*DeviceSet, error) {
	if serialized == "" {
		return NewDeviceSet(), nil
	}
	s := &DeviceSet{}
	if err := s.UnmarshalJSON([]byte(serialized)); err != nil {
		return nil, err
	}
	return s, nil
}

// Serialize renders the set the way the ledger stores it.
func (s *DeviceSet) Serialize() (string, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
