package listing

// TourismType は観光施設の種別です。
type TourismType string

const (
	TourismHotel      TourismType = "HOTEL"
	TourismRestaurant TourismType = "RESTAURANT"
	TourismAttraction TourismType = "ATTRACTION"
	TourismTheater    TourismType = "THEATER"
	TourismBank       TourismType = "BANK"
)

// Valid は既知の種別かどうかを返します。
func (t TourismType) Valid() bool {
	switch t {
	case TourismHotel, TourismRestaurant, TourismAttraction, TourismTheater, TourismBank:
		return true
	default:
		return false
	}
}

// Tourism は観光カテゴリの掲載です。
type Tourism struct {
	Post
	IsActive bool        `json:"isActive"`
	Rating   float64     `json:"rating"`
	Type     TourismType `json:"type"`
}

// TouristAttraction は観光名所の掲載です。
type TouristAttraction struct {
	Tourism
	AttractionType string  `json:"attractionType"`
	BestVisitTime  string  `json:"bestVisitTime"`
	EntryFee       float64 `json:"entryFee"`
	OpeningHours   string  `json:"openingHours"`
	GuideTours     bool    `json:"guideTours"`
}
