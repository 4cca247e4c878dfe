package storage

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/tartampluch/go-contactbook/internal/config"
	"github.com/tartampluch/go-contactbook/internal/contacts"
)

// fieldProperties lists the vCard property written for each field kind.
var fieldProperties = []struct {
	kind contacts.Kind
	prop string
}{
	{contacts.KindPhone, config.VCardTEL},
	{contacts.KindBirthday, config.VCardBDAY},
	{contacts.KindName, config.VCardXName},
	{contacts.KindGeneric, config.VCardXField},
}

func propertyFor(kind contacts.Kind) string {
	for _, fp := range fieldProperties {
		if fp.kind == kind {
			return fp.prop
		}
	}
	return config.VCardXField
}

// Encode writes one vCard 4.0 per record.
//
// Layout of a card:
//
//	FN                  record name
//	UID                 urn:uuid:<UUIDv5 of the name>
//	TEL                 phone field
//	BDAY;VALUE=date     birthday field, YYYY-MM-DD
//	X-CONTACTBOOK-NAME  name-kind field stored in the field list
//	X-CONTACTBOOK-FIELD generic field
//
// Every field property carries X-CONTACTBOOK-INDEX, its position in the record.
func Encode(w io.Writer, records []*contacts.Record) error {
	enc := vcard.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(toCard(r)); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

func toCard(r *contacts.Record) vcard.Card {
	name := r.Name().String()
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, config.VCardVersion)
	card.SetValue(config.VCardFN, name)
	card.SetValue(config.VCardUID, config.VCardUIDPrefix+recordUID(name).String())

	for i, f := range r.Fields() {
		prop := &vcard.Field{
			Value:  f.String(),
			Params: make(vcard.Params),
		}
		prop.Params.Set(config.VCardParamIndex, strconv.Itoa(i))
		if f.Kind() == contacts.KindBirthday {
			prop.Params.Set(config.VCardParamValue, config.VCardValueDate)
		}
		card.Add(propertyFor(f.Kind()), prop)
	}
	return card
}

// recordUID derives a stable identifier from the record name.
func recordUID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.AppID+"/"+name))
}

// Decode reads every card of the stream back into records, in stream order.
// Fields are restored without validation.
func Decode(r io.Reader) ([]*contacts.Record, error) {
	dec := vcard.NewDecoder(r)
	var records []*contacts.Record
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
		}

		rec, err := fromCard(card)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

type indexedField struct {
	index int
	field contacts.Field
}

func fromCard(card vcard.Card) (*contacts.Record, error) {
	fn := card.Get(config.VCardFN)
	if fn == nil {
		return nil, errors.New(config.ErrVCardNoName)
	}

	var fields []indexedField
	for _, fp := range fieldProperties {
		for _, p := range card[fp.prop] {
			f, err := decodeField(fp.kind, p.Value)
			if err != nil {
				return nil, err
			}
			idx, err := fieldIndex(p)
			if err != nil {
				return nil, err
			}
			fields = append(fields, indexedField{index: idx, field: f})
		}
	}

	// Unindexed properties (hand-edited files) go last, in stable order.
	slices.SortStableFunc(fields, func(a, b indexedField) int {
		return cmp.Compare(a.index, b.index)
	})

	rec := contacts.NewRecord(contacts.NewName(fn.Value))
	for _, f := range fields {
		rec.AddField(f.field)
	}
	return rec, nil
}

func decodeField(kind contacts.Kind, value string) (contacts.Field, error) {
	if kind != contacts.KindBirthday {
		return contacts.Restore(kind, value), nil
	}
	d, err := time.Parse(config.DateFormatISO, value)
	if err != nil {
		return contacts.Field{}, fmt.Errorf("%s %q: %w", config.ErrDateParse, value, err)
	}
	return contacts.Restore(kind, d), nil
}

func fieldIndex(p *vcard.Field) (int, error) {
	raw := p.Params.Get(config.VCardParamIndex)
	if raw == "" {
		return math.MaxInt, nil
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%s: %q", config.ErrVCardIndex, raw)
	}
	return idx, nil
}
