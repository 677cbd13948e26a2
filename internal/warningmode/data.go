package warningmode

// ModeCurrentData is the typed reply of a warning mode change.
type ModeCurrentData struct {
	Mode           string `json:"waringmode"`
	RequestSuccess string `json:"success"`
	Message        string `json:"message"`
}

// NewModeCurrentData builds the typed reply from a decoded JSON object. It
// reports false when "success" or "waringmode" is missing or not a string.
// A missing or non-string "message" leaves Message empty.
func NewModeCurrentData(json map[string]any) (*ModeCurrentData, bool) {
	success, ok := json["success"].(string)
	if !ok {
		return nil, false
	}
	mode, ok := json["waringmode"].(string)
	if !ok {
		return nil, false
	}
	msg, _ := json["message"].(string)
	return &ModeCurrentData{Mode: mode, RequestSuccess: success, Message: msg}, true
}

// Open reports whether the remote side says the warning mode is open.
func (d *ModeCurrentData) Open() bool { return d.Mode == ModeOpen }
