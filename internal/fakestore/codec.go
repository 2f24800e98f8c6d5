package fakestore

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/five82/shelf/internal/product"
)

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("price")
	e.Raw([]byte(p.Price.String()))
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("image")
	e.Str(p.Image)
	if p.Rating != nil {
		e.FieldStart("rating")
		e.ObjStart()
		e.FieldStart("rate")
		e.Float64(p.Rating.Rate)
		e.FieldStart("count")
		e.Int(p.Rating.Count)
		e.ObjEnd()
	}
	e.ObjEnd()
}

func encodeProducts(items []product.Product) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, p := range items {
		encodeProduct(&e, p)
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeStrings(items []string) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, s := range items {
		e.Str(s)
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeField(name string, write func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart(name)
	write(&e)
	e.ObjEnd()
	return e.Bytes()
}

type user struct {
	ID        int
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

func decodeLogin(data []byte) (username, password string, err error) {
	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			username, err = d.Str()
		case "password":
			password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return "", "", errors.Wrap(err, "decode login")
	}
	return username, password, nil
}

func decodeUser(data []byte) (user, error) {
	var u user
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "email":
			u.Email, err = d.Str()
		case "username":
			u.Username, err = d.Str()
		case "password":
			u.Password, err = d.Str()
		case "name":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "firstname":
					u.FirstName, err = d.Str()
				case "lastname":
					u.LastName, err = d.Str()
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return user{}, errors.Wrap(err, "decode user")
	}
	return u, nil
}
