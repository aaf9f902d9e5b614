package field

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/syssam/socialgraph/schema"
)

// A Validator checks a field value before it is written.
// The value passed is of the field's Go type (see Type.String).
type Validator func(any) error

// Descriptor for field configuration.
type Descriptor struct {
	Name          string              // field name.
	Info          *TypeInfo           // field type info.
	Size          int                 // max size for string columns, 0 for default.
	Optional      bool                // may be omitted on create and stored as NULL.
	Nillable      bool                // exposed as a pointer on entities.
	Unique        bool                // single-column unique constraint.
	Immutable     bool                // cannot be changed after creation.
	Sensitive     bool                // omitted from logs and String output.
	StorageKey    string              // column name override.
	Comment       string              // field comment.
	Default       any                 // static value, or func() any evaluated per insert.
	UpdateDefault func() any          // value set on every update.
	Enums         []struct{ N, V string }
	Validators    []Validator
	Annotations   []schema.Annotation
	Err           error
}

// DefaultValue returns the default value of the field, evaluating default
// functions. The second result is false if the field has no default.
func (d *Descriptor) DefaultValue() (any, bool) {
	switch v := d.Default.(type) {
	case nil:
		return nil, false
	case func() any:
		return v(), true
	default:
		return v, true
	}
}

// EnumValues returns the enum values in declaration order.
func (d *Descriptor) EnumValues() []string {
	vs := make([]string, len(d.Enums))
	for i, e := range d.Enums {
		vs[i] = e.V
	}
	return vs
}

// String returns a new Field with type string.
func String(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeString},
	}}
}

// Text returns a new string field without a size limit.
func Text(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeString},
		Size: math.MaxInt32,
	}}
}

// Int returns a new Field with type int.
func Int(name string) *intBuilder {
	return &intBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeInt},
	}}
}

// Int64 returns a new Field with type int64.
func Int64(name string) *intBuilder {
	return &intBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeInt64},
	}}
}

// Float returns a new Field with type float64.
func Float(name string) *floatBuilder {
	return &floatBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeFloat64},
	}}
}

// Bool returns a new Field with type bool.
func Bool(name string) *boolBuilder {
	return &boolBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeBool},
	}}
}

// Time returns a new Field with type time.Time.
func Time(name string) *timeBuilder {
	return &timeBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeTime},
	}}
}

// JSON returns a new Field holding raw JSON.
//
// A JSON field that is Optional is stored in a nullable column and
// distinguishes SQL NULL from the JSON literal null.
func JSON(name string) *jsonBuilder {
	return &jsonBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeJSON},
	}}
}

// Strings returns a new Field holding an ordered list of strings.
// The list keeps insertion order and duplicates, and defaults to empty.
func Strings(name string) *stringsBuilder {
	return &stringsBuilder{&Descriptor{
		Name:    name,
		Info:    &TypeInfo{Type: TypeStrings},
		Default: func() any { return []string{} },
	}}
}

// Enum returns a new Field with type enum.
//
//	field.Enum("role").Values("OWNER", "ADMIN", "EDITOR")
func Enum(name string) *enumBuilder {
	return &enumBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeEnum},
	}}
}

// stringBuilder is the builder for string fields.
type stringBuilder struct {
	desc *Descriptor
}

// Unique makes the field unique within all vertices of this type.
func (b *stringBuilder) Unique() *stringBuilder {
	b.desc.Unique = true
	return b
}

// Optional indicates that this field is optional on create and nullable in storage.
func (b *stringBuilder) Optional() *stringBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is exposed as a pointer.
func (b *stringBuilder) Nillable() *stringBuilder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *stringBuilder) Immutable() *stringBuilder {
	b.desc.Immutable = true
	return b
}

// Sensitive fields are never printed or logged.
func (b *stringBuilder) Sensitive() *stringBuilder {
	b.desc.Sensitive = true
	return b
}

// Default sets the default value of the field.
func (b *stringBuilder) Default(s string) *stringBuilder {
	b.desc.Default = s
	return b
}

// DefaultFunc sets a function computing the default value on every insert.
func (b *stringBuilder) DefaultFunc(fn func() string) *stringBuilder {
	b.desc.Default = func() any { return fn() }
	return b
}

// MaxLen adds a length validator and sets the column size.
func (b *stringBuilder) MaxLen(i int) *stringBuilder {
	b.desc.Size = i
	return b.Validate(func(s string) error {
		if utf8.RuneCountInString(s) > i {
			return errors.New("value is greater than the required length")
		}
		return nil
	})
}

// MinLen adds a length validator.
func (b *stringBuilder) MinLen(i int) *stringBuilder {
	return b.Validate(func(s string) error {
		if utf8.RuneCountInString(s) < i {
			return errors.New("value is less than the required length")
		}
		return nil
	})
}

// NotEmpty adds a length validator for non-empty values.
func (b *stringBuilder) NotEmpty() *stringBuilder {
	return b.MinLen(1)
}

// Match adds a regex matcher validator.
func (b *stringBuilder) Match(re *regexp.Regexp) *stringBuilder {
	return b.Validate(func(s string) error {
		if !re.MatchString(s) {
			return errors.New("value does not match validation")
		}
		return nil
	})
}

// Validate adds a validator for this field.
func (b *stringBuilder) Validate(fn func(string) error) *stringBuilder {
	b.desc.Validators = append(b.desc.Validators, func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expect string, got %T", v)
		}
		return fn(s)
	})
	return b
}

// StorageKey sets the column name of the field.
func (b *stringBuilder) StorageKey(key string) *stringBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *stringBuilder) Comment(c string) *stringBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field.
func (b *stringBuilder) Annotations(annotations ...schema.Annotation) *stringBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *stringBuilder) Descriptor() *Descriptor {
	return b.desc
}

// intBuilder is the builder for int and int64 fields.
type intBuilder struct {
	desc *Descriptor
}

// Unique makes the field unique within all vertices of this type.
func (b *intBuilder) Unique() *intBuilder {
	b.desc.Unique = true
	return b
}

// Optional indicates that this field is optional on create and nullable in storage.
func (b *intBuilder) Optional() *intBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is exposed as a pointer.
func (b *intBuilder) Nillable() *intBuilder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *intBuilder) Immutable() *intBuilder {
	b.desc.Immutable = true
	return b
}

// Default sets the default value of the field.
func (b *intBuilder) Default(i int64) *intBuilder {
	b.desc.Default = i
	return b
}

// Min adds a minimum value validator.
func (b *intBuilder) Min(i int64) *intBuilder {
	return b.Validate(func(v int64) error {
		if v < i {
			return errors.New("value out of range")
		}
		return nil
	})
}

// Max adds a maximum value validator.
func (b *intBuilder) Max(i int64) *intBuilder {
	return b.Validate(func(v int64) error {
		if v > i {
			return errors.New("value out of range")
		}
		return nil
	})
}

// Positive adds a minimum value validator with the value of 1.
func (b *intBuilder) Positive() *intBuilder {
	return b.Min(1)
}

// NonNegative adds a minimum value validator with the value of 0.
func (b *intBuilder) NonNegative() *intBuilder {
	return b.Min(0)
}

// Range adds a range validator for the field.
func (b *intBuilder) Range(i, j int64) *intBuilder {
	return b.Validate(func(v int64) error {
		if v < i || v > j {
			return errors.New("value out of range")
		}
		return nil
	})
}

// Validate adds a validator for this field. The value is passed as int64
// for both int and int64 fields.
func (b *intBuilder) Validate(fn func(int64) error) *intBuilder {
	b.desc.Validators = append(b.desc.Validators, func(v any) error {
		switch v := v.(type) {
		case int64:
			return fn(v)
		case int:
			return fn(int64(v))
		case int32:
			return fn(int64(v))
		}
		return fmt.Errorf("expect integer, got %T", v)
	})
	return b
}

// StorageKey sets the column name of the field.
func (b *intBuilder) StorageKey(key string) *intBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *intBuilder) Comment(c string) *intBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field.
func (b *intBuilder) Annotations(annotations ...schema.Annotation) *intBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *intBuilder) Descriptor() *Descriptor {
	return b.desc
}

// floatBuilder is the builder for float fields.
type floatBuilder struct {
	desc *Descriptor
}

// Optional indicates that this field is optional on create and nullable in storage.
func (b *floatBuilder) Optional() *floatBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is exposed as a pointer.
func (b *floatBuilder) Nillable() *floatBuilder {
	b.desc.Nillable = true
	return b
}

// Default sets the default value of the field.
func (b *floatBuilder) Default(f float64) *floatBuilder {
	b.desc.Default = f
	return b
}

// Min adds a minimum value validator.
func (b *floatBuilder) Min(f float64) *floatBuilder {
	b.desc.Validators = append(b.desc.Validators, func(v any) error {
		if x, ok := v.(float64); !ok || x < f {
			return errors.New("value out of range")
		}
		return nil
	})
	return b
}

// StorageKey sets the column name of the field.
func (b *floatBuilder) StorageKey(key string) *floatBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *floatBuilder) Comment(c string) *floatBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *floatBuilder) Descriptor() *Descriptor {
	return b.desc
}

// boolBuilder is the builder for boolean fields.
type boolBuilder struct {
	desc *Descriptor
}

// Default sets the default value of the field.
func (b *boolBuilder) Default(v bool) *boolBuilder {
	b.desc.Default = v
	return b
}

// Optional indicates that this field is optional on create and nullable in storage.
func (b *boolBuilder) Optional() *boolBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is exposed as a pointer.
func (b *boolBuilder) Nillable() *boolBuilder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *boolBuilder) Immutable() *boolBuilder {
	b.desc.Immutable = true
	return b
}

// StorageKey sets the column name of the field.
func (b *boolBuilder) StorageKey(key string) *boolBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *boolBuilder) Comment(c string) *boolBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *boolBuilder) Descriptor() *Descriptor {
	return b.desc
}

// timeBuilder is the builder for time fields.
type timeBuilder struct {
	desc *Descriptor
}

// Default sets the function that is used for setting the field value on creation.
//
//	field.Time("created_at").Default(time.Now)
func (b *timeBuilder) Default(fn func() time.Time) *timeBuilder {
	b.desc.Default = func() any { return fn() }
	return b
}

// UpdateDefault sets the function that is used for setting the field value on update.
//
//	field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now)
func (b *timeBuilder) UpdateDefault(fn func() time.Time) *timeBuilder {
	b.desc.UpdateDefault = func() any { return fn() }
	return b
}

// Optional indicates that this field is optional on create and nullable in storage.
func (b *timeBuilder) Optional() *timeBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is exposed as a pointer.
func (b *timeBuilder) Nillable() *timeBuilder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *timeBuilder) Immutable() *timeBuilder {
	b.desc.Immutable = true
	return b
}

// StorageKey sets the column name of the field.
func (b *timeBuilder) StorageKey(key string) *timeBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *timeBuilder) Comment(c string) *timeBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *timeBuilder) Descriptor() *Descriptor {
	return b.desc
}

// jsonBuilder is the builder for raw JSON fields.
type jsonBuilder struct {
	desc *Descriptor
}

// Optional indicates that this field is optional on create and nullable in storage.
func (b *jsonBuilder) Optional() *jsonBuilder {
	b.desc.Optional = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *jsonBuilder) Immutable() *jsonBuilder {
	b.desc.Immutable = true
	return b
}

// StorageKey sets the column name of the field.
func (b *jsonBuilder) StorageKey(key string) *jsonBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *jsonBuilder) Comment(c string) *jsonBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field.
func (b *jsonBuilder) Annotations(annotations ...schema.Annotation) *jsonBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *jsonBuilder) Descriptor() *Descriptor {
	return b.desc
}

// stringsBuilder is the builder for ordered string list fields.
type stringsBuilder struct {
	desc *Descriptor
}

// Validate adds a validator applied to the whole list.
func (b *stringsBuilder) Validate(fn func([]string) error) *stringsBuilder {
	b.desc.Validators = append(b.desc.Validators, func(v any) error {
		vs, ok := v.([]string)
		if !ok {
			return fmt.Errorf("expect []string, got %T", v)
		}
		return fn(vs)
	})
	return b
}

// StorageKey sets the column name of the field.
func (b *stringsBuilder) StorageKey(key string) *stringsBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *stringsBuilder) Comment(c string) *stringsBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *stringsBuilder) Descriptor() *Descriptor {
	return b.desc
}

// enumBuilder is the builder for enum fields.
type enumBuilder struct {
	desc *Descriptor
}

// Values adds given values to the enum values.
//
//	field.Enum("type").Values("ARTIST", "GROUP")
func (b *enumBuilder) Values(values ...string) *enumBuilder {
	for _, v := range values {
		b.desc.Enums = append(b.desc.Enums, struct{ N, V string }{N: v, V: v})
	}
	return b
}

// Default sets the default value of the field.
func (b *enumBuilder) Default(value string) *enumBuilder {
	b.desc.Default = value
	return b
}

// Optional indicates that this field is optional on create and nullable in storage.
func (b *enumBuilder) Optional() *enumBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is exposed as a pointer.
func (b *enumBuilder) Nillable() *enumBuilder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *enumBuilder) Immutable() *enumBuilder {
	b.desc.Immutable = true
	return b
}

// StorageKey sets the column name of the field.
func (b *enumBuilder) StorageKey(key string) *enumBuilder {
	b.desc.StorageKey = key
	return b
}

// Comment sets the comment of the field.
func (b *enumBuilder) Comment(c string) *enumBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the socialgraph.Field interface.
func (b *enumBuilder) Descriptor() *Descriptor {
	if len(b.desc.Enums) == 0 {
		b.desc.Err = fmt.Errorf("missing values for enum field %q", b.desc.Name)
		return b.desc
	}
	seen := make(map[string]bool, len(b.desc.Enums))
	for _, e := range b.desc.Enums {
		if e.V == "" {
			b.desc.Err = fmt.Errorf("%q field value cannot be empty", b.desc.Name)
		}
		if seen[e.V] {
			b.desc.Err = fmt.Errorf("duplicate values %q for enum field %q", e.V, b.desc.Name)
		}
		seen[e.V] = true
	}
	if d, ok := b.desc.Default.(string); ok && !seen[d] {
		b.desc.Err = fmt.Errorf("default value %q is not a value of enum field %q", d, b.desc.Name)
	}
	return b.desc
}
