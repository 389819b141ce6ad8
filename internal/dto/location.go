package dto

type UpdateLocationRequest struct {
	UserID int64   `json:"userId"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// ActiveUser is the projection returned by the active-user listing.
// Lat/Lng stay null for a user whose position was stamped but cleared
// upstream; the listing itself only ever contains users with a report.
type ActiveUser struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}
