package main

import (
	"github.com/anirudhraja/protokit/wire"
)

// UserStatus is an enum; zero means unset.
type UserStatus int32

const (
	UserStatusUnknown UserStatus = iota
	UserStatusActive
	UserStatusSuspended
)

func (s UserStatus) ProtobufValue() uint64 { return uint64(s) }

func (s UserStatus) String() string {
	switch s {
	case UserStatusActive:
		return "ACTIVE"
	case UserStatusSuspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

func userStatusFromValue(v uint64) (UserStatus, bool) {
	if v > uint64(UserStatusSuspended) {
		return UserStatusUnknown, false
	}
	return UserStatus(v), true
}

type Address struct {
	Street  string
	City    string
	Country string
	Lat     float64
	Lng     float64
}

func (a *Address) MarshalProtobuf(e *wire.Encoder) error {
	if err := e.StringField(1, a.Street, ""); err != nil {
		return err
	}
	if err := e.StringField(2, a.City, ""); err != nil {
		return err
	}
	// Most users live in one country, so that is the default.
	if err := e.StringField(3, a.Country, "US"); err != nil {
		return err
	}
	e.DoubleField(4, a.Lat, 0)
	e.DoubleField(5, a.Lng, 0)
	return nil
}

func (a *Address) UnmarshalProtobuf(d *wire.Decoder) error {
	a.Country = "US"
	for {
		tag, ok, err := d.NextField()
		if err != nil || !ok {
			return err
		}
		switch tag.FieldNumber() {
		case 1:
			a.Street, err = d.StringField(tag)
		case 2:
			a.City, err = d.StringField(tag)
		case 3:
			a.Country, err = d.StringField(tag)
		case 4:
			a.Lat, err = d.DoubleField(tag)
		case 5:
			a.Lng, err = d.DoubleField(tag)
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

type Post struct {
	ID    uint64
	Title string
	Likes uint32
	Tags  []string
}

func (p *Post) MarshalProtobuf(e *wire.Encoder) error {
	e.Uint64Field(1, p.ID, 0)
	if err := e.StringField(2, p.Title, ""); err != nil {
		return err
	}
	e.Uint32Field(3, p.Likes, 0)
	for _, tag := range p.Tags {
		e.EncodeTag(4, wire.WireBytes)
		if err := e.EncodeString(tag); err != nil {
			return err
		}
	}
	return nil
}

func (p *Post) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil || !ok {
			return err
		}
		switch tag.FieldNumber() {
		case 1:
			p.ID, err = d.Uint64Field(tag)
		case 2:
			p.Title, err = d.StringField(tag)
		case 3:
			p.Likes, err = d.Uint32Field(tag)
		case 4:
			var s string
			if s, err = d.StringField(tag); err == nil {
				p.Tags = append(p.Tags, s)
			}
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

// User carries nullable fields the way google.protobuf wrapper types do: a
// nil pointer is absent, a non-nil pointer is written even when zero.
type User struct {
	ID       uint64
	Name     string
	Status   UserStatus
	Address  *Address
	Posts    []*Post
	Scores   []int64
	Nickname *string
	Age      *uint32
	Verified bool
}

func (u *User) MarshalProtobuf(e *wire.Encoder) error {
	e.Uint64Field(1, u.ID, 0)
	if err := e.StringField(2, u.Name, ""); err != nil {
		return err
	}
	e.EnumField(3, u.Status, UserStatusUnknown)
	if u.Address != nil {
		if err := e.MessageField(4, u.Address); err != nil {
			return err
		}
	}
	for _, p := range u.Posts {
		if err := e.MessageField(5, p); err != nil {
			return err
		}
	}
	e.PackedInt64s(6, u.Scores)
	if u.Nickname != nil {
		err := e.MessageFunc(7, func(e *wire.Encoder) error {
			return e.StringField(1, *u.Nickname, "")
		})
		if err != nil {
			return err
		}
	}
	if u.Age != nil {
		// The wrapper is written even for zero so a known age of 0 survives.
		err := e.MessageFunc(8, func(e *wire.Encoder) error {
			e.Uint32Field(1, *u.Age, 0)
			return nil
		})
		if err != nil {
			return err
		}
	}
	e.BoolField(9, u.Verified, false)
	return nil
}

func (u *User) UnmarshalProtobuf(d *wire.Decoder) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil || !ok {
			return err
		}
		switch tag.FieldNumber() {
		case 1:
			u.ID, err = d.Uint64Field(tag)
		case 2:
			u.Name, err = d.StringField(tag)
		case 3:
			u.Status, err = wire.DecodeEnum(d, tag, userStatusFromValue, UserStatusUnknown)
		case 4:
			u.Address = new(Address)
			err = d.MessageField(tag, u.Address)
		case 5:
			var p Post
			if p, err = wire.ReadMessage[Post](d, tag); err == nil {
				u.Posts = append(u.Posts, &p)
			}
		case 6:
			u.Scores, err = wire.AppendRepeated(d, tag, u.Scores, d.Int64Field)
		case 7:
			var s string
			err = d.MessageFunc(tag, func(d *wire.Decoder) error {
				return readWrapped(d, func(tag wire.Tag) (err error) {
					s, err = d.StringField(tag)
					return err
				})
			})
			u.Nickname = &s
		case 8:
			var age uint32
			err = d.MessageFunc(tag, func(d *wire.Decoder) error {
				return readWrapped(d, func(tag wire.Tag) (err error) {
					age, err = d.Uint32Field(tag)
					return err
				})
			})
			u.Age = &age
		case 9:
			u.Verified, err = d.BoolField(tag)
		default:
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}

// readWrapped decodes a wrapper message, handing its value field to read.
func readWrapped(d *wire.Decoder, read func(wire.Tag) error) error {
	for {
		tag, ok, err := d.NextField()
		if err != nil || !ok {
			return err
		}
		if tag.FieldNumber() == 1 {
			err = read(tag)
		} else {
			err = d.SkipField(tag)
		}
		if err != nil {
			return err
		}
	}
}
