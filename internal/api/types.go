// Package api implements the client for the paginated listings GraphQL API.
package api

// Location holds the coordinates of a listing. Either value may be absent.
type Location struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Lister is the contact information published with a listing.
type Lister struct {
	Phone            string `json:"phone,omitempty"`
	Name             string `json:"name,omitempty"`
	BMLLicenseNumber string `json:"bml_license_number,omitempty"`
	BMLURL           string `json:"bml_url,omitempty"`
}

// Listing is one raw record as returned by the listings API. Nullable fields
// use pointers so filtering can distinguish absent from zero. Field names
// follow the API schema, including its spellings.
type Listing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content,omitempty"`
	Rooms       *int      `json:"rooms"`
	Price       *int      `json:"price"`
	Area        *float64  `json:"area,omitempty"`
	Beds        *int      `json:"beds,omitempty"`
	WC          *int      `json:"wc,omitempty"`
	Livings     *int      `json:"livings,omitempty"`
	Ketchen     *int      `json:"ketchen,omitempty"`
	Furnished   *int      `json:"furnished,omitempty"`
	AC          *int      `json:"ac,omitempty"`
	Lift        *int      `json:"lift,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Floor       *int      `json:"fl,omitempty"`
	Stairs      *int      `json:"stairs,omitempty"`
	Stores      *int      `json:"stores,omitempty"`
	Backyard    *int      `json:"backyard,omitempty"`
	ExtraUnit   *int      `json:"extra_unit,omitempty"`
	Family      *int      `json:"family,omitempty"`
	MenPlace    *int      `json:"men_place,omitempty"`
	WomenPlace  *int      `json:"women_place,omitempty"`
	RentPeriod  *int      `json:"rent_period,omitempty"`
	Status      *int      `json:"status,omitempty"`
	Published   *bool     `json:"published,omitempty"`
	CreateTime  *int64    `json:"create_time"`
	PublishedAt *int64    `json:"published_at"`
	LastUpdate  *int64    `json:"last_update"`
	Location    *Location `json:"location"`
	Address     string    `json:"address,omitempty"`
	District    string    `json:"district,omitempty"`
	Direction   string    `json:"direction,omitempty"`
	City        string    `json:"city,omitempty"`
	DistrictID  int       `json:"district_id,omitempty"`
	DirectionID int       `json:"direction_id,omitempty"`
	CityID      int       `json:"city_id,omitempty"`
	Category    *int      `json:"category,omitempty"`
	Path        string    `json:"path,omitempty"`
	URI         string    `json:"uri,omitempty"`
	PlanNo      string    `json:"plan_no,omitempty"`
	ParcelNo    string    `json:"parcel_no,omitempty"`
	Lister      *Lister   `json:"user,omitempty"`
}

// HasCoordinates reports whether the listing carries usable coordinates for
// distance calculation.
func (l *Listing) HasCoordinates() bool {
	return l.Location != nil && l.Location.Lat != nil && l.Location.Lng != nil
}
