package forms

import (
	"context"

	"github.com/ouhoy/rabatino-client/internal/listing"
)

// NewDefaultRegistry は全カテゴリの作成フォームを登録したレジストリを返します。
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for name, build := range defaultForms {
		if err := r.Register(name, lazy(name, build)); err != nil {
			// defaultForms は固定値なのでここには来ない
			panic(err)
		}
	}
	return r
}

var defaultForms = map[string]func() *Form{
	"create-tourism-hotel-form": func() *Form {
		return &Form{Title: "ホテルを掲載", Type: string(listing.TourismHotel), Fields: tourismFields()}
	},
	"create-tourism-restaurant-form": func() *Form {
		return &Form{Title: "レストランを掲載", Type: string(listing.TourismRestaurant), Fields: tourismFields()}
	},
	"create-tourism-attraction-form": func() *Form {
		return &Form{
			Title: "観光名所を掲載",
			Type:  string(listing.TourismAttraction),
			Fields: append(tourismFields(),
				Field{Name: "attractionType", Label: "名所の種類", Type: FieldText, Required: true},
				Field{Name: "bestVisitTime", Label: "おすすめの時期", Type: FieldText},
				Field{Name: "entryFee", Label: "入場料", Type: FieldNumber},
				Field{Name: "openingHours", Label: "営業時間", Type: FieldText},
				Field{Name: "guideTours", Label: "ガイドツアーあり", Type: FieldBool},
			),
		}
	},
	"create-education-university-form": func() *Form {
		return &Form{
			Title: "大学を掲載",
			Type:  string(listing.InstitutionUniversity),
			Fields: append(educationFields(),
				Field{Name: "faculties", Label: "学部", Type: FieldList},
				Field{Name: "ranking", Label: "ランキング", Type: FieldText},
				Field{Name: "accreditation", Label: "認定", Type: FieldText},
				Field{Name: "hasHousing", Label: "学生寮あり", Type: FieldBool},
				Field{Name: "researchCenters", Label: "研究センター", Type: FieldList},
				Field{Name: "facilities", Label: "設備", Type: FieldList},
			),
		}
	},
	"create-education-college-form": func() *Form {
		return &Form{
			Title: "カレッジを掲載",
			Type:  string(listing.InstitutionCollege),
			Fields: append(educationFields(),
				Field{Name: "departments", Label: "学科", Type: FieldList},
				Field{Name: "specialization", Label: "専門分野", Type: FieldText},
				Field{Name: "affiliation", Label: "提携先", Type: FieldText},
				Field{Name: "hasNote", Label: "備考あり", Type: FieldBool},
				Field{Name: "facilities", Label: "設備", Type: FieldList},
			),
		}
	},
	"create-education-library-form": func() *Form {
		return &Form{
			Title: "図書館を掲載",
			Type:  string(listing.InstitutionLibrary),
			Fields: append(educationFields(),
				Field{Name: "bookCount", Label: "蔵書数", Type: FieldNumber},
				Field{Name: "sections", Label: "コーナー", Type: FieldList},
				Field{Name: "hasDigitalAccess", Label: "電子資料あり", Type: FieldBool},
				Field{Name: "operationHours", Label: "開館時間", Type: FieldText},
				Field{Name: "hasPrinting", Label: "印刷可", Type: FieldBool},
				Field{Name: "hasStudyRooms", Label: "自習室あり", Type: FieldBool},
			),
		}
	},
	"create-education-coaching_center-form": func() *Form {
		return &Form{
			Title: "学習塾を掲載",
			Type:  string(listing.InstitutionCoachingCenter),
			Fields: append(educationFields(),
				Field{Name: "specialty", Label: "得意分野", Type: FieldText},
				Field{Name: "courses", Label: "コース", Type: FieldList},
				Field{Name: "schedule", Label: "時間割", Type: FieldText},
			),
		}
	},
	"create-education-study_center-form": func() *Form {
		return &Form{
			Title: "自習スペースを掲載",
			Type:  string(listing.InstitutionStudyCenter),
			Fields: append(educationFields(),
				Field{Name: "capacity", Label: "席数", Type: FieldNumber},
				Field{Name: "amenities", Label: "設備", Type: FieldList},
				Field{Name: "hourlyRateRange", Label: "時間料金（最小, 最大）", Type: FieldList},
				Field{Name: "has24Access", Label: "24時間利用可", Type: FieldBool},
				Field{Name: "rooms", Label: "部屋", Type: FieldList},
			),
		}
	},
	"create-jobs-job-form": func() *Form {
		return &Form{
			Title: "求人を掲載",
			Fields: append(postFields(),
				Field{Name: "company", Label: "会社名", Type: FieldText, Required: true},
				Field{Name: "logo", Label: "ロゴ", Type: FieldImage},
				Field{Name: "location", Label: "勤務地", Type: FieldText, Required: true},
				Field{Name: "salary", Label: "給与", Type: FieldText},
				Field{Name: "jobType", Label: "雇用形態", Type: FieldSelect, Required: true, Options: []string{
					string(listing.JobFullTime), string(listing.JobPartTime), string(listing.JobContract), string(listing.JobInternship),
				}},
				Field{Name: "workLocation", Label: "勤務形態", Type: FieldSelect, Required: true, Options: []string{
					string(listing.WorkRemote), string(listing.WorkOffice), string(listing.WorkHybrid),
				}},
				Field{Name: "requirements", Label: "応募条件", Type: FieldList},
				Field{Name: "applicationLink", Label: "応募先URL", Type: FieldURL, Required: true},
				Field{Name: "expiryDate", Label: "掲載期限", Type: FieldDate, Required: true},
				Field{Name: "isActive", Label: "公開する", Type: FieldBool},
			),
		}
	},
}

func lazy(name string, build func() *Form) Loader {
	return func(ctx context.Context) (*Form, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		category, kind, err := ParseName(name)
		if err != nil {
			return nil, err
		}
		form := build()
		form.Name = name
		form.Category = category
		form.Kind = kind
		return form, nil
	}
}

func postFields() []Field {
	return []Field{
		{Name: "title", Label: "タイトル", Type: FieldText, Required: true},
		{Name: "description", Label: "説明", Type: FieldTextarea, Required: true},
		{Name: "address", Label: "住所", Type: FieldText, Required: true},
		{Name: "latitude", Label: "緯度", Type: FieldNumber, Required: true},
		{Name: "longitude", Label: "経度", Type: FieldNumber, Required: true},
		{Name: "website", Label: "Webサイト", Type: FieldURL},
		{Name: "phone", Label: "電話番号", Type: FieldTel},
		{Name: "email", Label: "メールアドレス", Type: FieldEmail},
		{Name: "featuredImage", Label: "メイン画像", Type: FieldImage, Required: true},
		{Name: "images", Label: "画像", Type: FieldList},
	}
}

func tourismFields() []Field {
	return append(postFields(),
		Field{Name: "rating", Label: "評価", Type: FieldNumber},
		Field{Name: "isActive", Label: "公開する", Type: FieldBool},
	)
}

func educationFields() []Field {
	return append(postFields(),
		Field{Name: "private", Label: "私立", Type: FieldBool},
	)
}
