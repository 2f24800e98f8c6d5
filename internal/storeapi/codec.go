package storeapi

import (
	"bytes"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/product"
)

func decodeProducts(data []byte) ([]product.Product, error) {
	var out []product.Product
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return out, nil
}

func decodeProductBytes(data []byte) (product.Product, error) {
	p, err := decodeProduct(jx.DecodeBytes(data))
	if err != nil {
		return product.Product{}, errors.Wrap(err, "decode product")
	}
	return p, nil
}

// text reads a string field. The demo API does not guarantee UTF-8, and
// invalid bytes would leak into the persisted snapshot.
func text(d *jx.Decoder) (string, error) {
	s, err := d.Str()
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(s, "\uFFFD"), nil
}

// empty reports a body the demo API sends for a missing product.
func empty(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int()
		case "title":
			p.Title, err = text(d)
		case "price":
			p.Price, err = decodeDecimal(d)
		case "category":
			p.Category, err = text(d)
		case "image":
			p.Image, err = text(d)
		case "description":
			p.Description, err = text(d)
		case "rating":
			if d.Next() == jx.Null {
				return d.Null()
			}
			r := &product.Rating{}
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "rate":
					r.Rate, err = d.Float64()
				case "count":
					r.Count, err = d.Int()
				default:
					err = d.Skip()
				}
				return err
			})
			p.Rating = r
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	return p, err
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = string(n)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if v.IsNegative() {
		return decimal.Zero, errors.Errorf("negative price %s", raw)
	}
	return v, nil
}

func decodeStrings(data []byte) ([]string, error) {
	var out []string
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		s, err := text(d)
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode strings")
	}
	return out, nil
}

func encodeCredentials(c Credentials) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("username")
	e.Str(c.Username)
	e.FieldStart("password")
	e.Str(c.Password)
	e.ObjEnd()
	return e.Bytes()
}

func decodeToken(data []byte) (string, error) {
	var token string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "token" {
			return d.Skip()
		}
		var err error
		token, err = d.Str()
		return err
	}); err != nil {
		return "", errors.Wrap(err, "decode token")
	}
	if token == "" {
		return "", errors.New("decode token: missing token")
	}
	return token, nil
}

func encodeRegistration(r Registration) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("email")
	e.Str(r.Email)
	e.FieldStart("username")
	e.Str(r.Username)
	e.FieldStart("password")
	e.Str(r.Password)
	e.FieldStart("name")
	e.ObjStart()
	e.FieldStart("firstname")
	e.Str(r.FirstName)
	e.FieldStart("lastname")
	e.Str(r.LastName)
	e.ObjEnd()
	e.FieldStart("address")
	e.ObjStart()
	e.FieldStart("city")
	e.Str("default city")
	e.FieldStart("street")
	e.Str("default street")
	e.FieldStart("number")
	e.Int(1)
	e.FieldStart("zipcode")
	e.Str("00000")
	e.FieldStart("geolocation")
	e.ObjStart()
	e.FieldStart("lat")
	e.Str("0")
	e.FieldStart("long")
	e.Str("0")
	e.ObjEnd()
	e.ObjEnd()
	e.FieldStart("phone")
	e.Str("0000000000")
	e.ObjEnd()
	return e.Bytes()
}

func decodeUserID(data []byte) (int, error) {
	var id int
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "id" {
			return d.Skip()
		}
		var err error
		id, err = d.Int()
		return err
	}); err != nil {
		return 0, errors.Wrap(err, "decode user")
	}
	return id, nil
}
