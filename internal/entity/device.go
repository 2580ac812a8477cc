package entity

// DeviceLoginData is what the token middleware stores for an authenticated
// companion device.
type DeviceLoginData struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
