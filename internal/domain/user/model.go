package user

import "fmt"

// User is a registered player.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.DisplayName == "" {
		return fmt.Errorf("user display name is required")
	}

	return nil
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID string
	Name   string
}
