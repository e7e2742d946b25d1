package terminal

import (
	terminalDatamodel "github.com/frahmantamala/access-bridge/internal/core/datamodel/terminal"
)

// Terminal is one physical access-control device. The registry is re-read at
// the start of every flow invocation; terminals may be added or disabled
// between cycles, so instances are never cached across flows.
type Terminal struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TerminalID string `json:"terminal_id"`
	Address    string `json:"address"`
	Port       string `json:"port"`
	Active     bool   `json:"active"`
	Model      string `json:"model,omitempty"`
	Firmware   string `json:"firmware,omitempty"`
	DoorNo     string `json:"door_no,omitempty"`
	Username   string `json:"-"`
	Password   string `json:"-"`
}

func FromDataModel(row *terminalDatamodel.Terminal) *Terminal {
	return &Terminal{
		ID:         row.ID,
		Name:       row.Name,
		TerminalID: row.TerminalID,
		Address:    row.Address,
		Port:       row.Port,
		Active:     row.Active,
		Model:      row.Model,
		Firmware:   row.Firmware,
		DoorNo:     row.DoorNo,
		Username:   row.Username,
		Password:   row.Password,
	}
}

func FromDataModelSlice(rows []*terminalDatamodel.Terminal) []*Terminal {
	out := make([]*Terminal, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out
}
