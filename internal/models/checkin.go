package models

import "time"

const (
	MoodVeryGood = "very_good"
	MoodHappy    = "happy"
	MoodNeutral  = "neutral"
	MoodBad      = "bad"
	MoodNormal   = "normal"
)

// Moods lists every accepted mood value. MoodNormal is the default.
func Moods() []string {
	return []string{MoodVeryGood, MoodHappy, MoodNeutral, MoodBad, MoodNormal}
}

func IsValidMood(mood string) bool {
	for _, candidate := range Moods() {
		if mood == candidate {
			return true
		}
	}
	return false
}

// GeoPoint is an optional check-in location. Longitude and Latitude are
// either both set or both nil.
type GeoPoint struct {
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
	Address   string   `json:"address"`
}

func (point GeoPoint) HasCoordinates() bool {
	return point.Longitude != nil && point.Latitude != nil
}

// WeatherSnapshot captures the conditions at check-in time, if the client
// supplied them.
type WeatherSnapshot struct {
	Temperature *float64 `json:"temperature"`
	Condition   string   `json:"condition"`
	Humidity    *int     `json:"humidity"`
}

// CheckIn is one daily record. Date is truncated to the start of the
// calendar day in the configured time zone, and (UserID, Date) is unique:
// the storage layer is the source of truth for at-most-one-per-day.
type CheckIn struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uint      `gorm:"not null;uniqueIndex:uidx_checkin_user_date" json:"userId"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:uidx_checkin_user_date" json:"date"`
	Mood   string    `gorm:"not null;default:normal" json:"mood"`
	Note   string    `json:"note"`

	Location GeoPoint        `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Weather  WeatherSnapshot `gorm:"embedded;embeddedPrefix:weather_" json:"weather"`

	Tags     []string `gorm:"serializer:json" json:"tags"`
	IsPublic bool     `gorm:"not null;default:false" json:"isPublic"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CheckInListQuery narrows check-in listings. Nil or zero fields are
// ignored.
type CheckInListQuery struct {
	FromStart *time.Time
	ToEnd     *time.Time
	Mood      string
	Tag       string
	Limit     int
	Offset    int
}
