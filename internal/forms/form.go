package forms

import "github.com/ouhoy/rabatino-client/internal/listing"

// FieldType は入力項目の種類です。
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldBool     FieldType = "checkbox"
	FieldList     FieldType = "list"
	FieldURL      FieldType = "url"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldSelect   FieldType = "select"
	FieldDate     FieldType = "date"
	FieldImage    FieldType = "image"
)

// Field はフォームの入力項目です。Name は REST リソースの JSON キーと一致します。
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// Form は掲載作成フォームの定義です。
type Form struct {
	Name     string           `json:"name"`
	Category listing.Category `json:"category"`
	Kind     string           `json:"kind"`
	Title    string           `json:"title"`
	Type     string           `json:"type,omitempty"` // REST の type フィールドに送る値
	Fields   []Field          `json:"fields"`
}

// Field は名前で項目を探します。
func (f *Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}
