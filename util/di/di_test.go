package di

import (
	"errors"
	"github.com/matryer/is"
	"go.uber.org/dig"
	"testing"
)

type settings struct {
	url string
}

type client struct {
	settings settings
}

func TestContainer_Get(t *testing.T) {
	is := is.New(t)

	built := 0
	c, err := New(
		Value(settings{url: "http://mirror.local"}),
		Provider(func(s settings) *client {
			built++
			return &client{settings: s}
		}),
	)
	is.NoErr(err)

	first, err := Get[*client](c)
	is.NoErr(err)
	is.Equal(first.settings.url, "http://mirror.local")

	second, err := Get[*client](c)
	is.NoErr(err)
	is.True(first == second)
	is.Equal(built, 1)
}

func TestContainer_Missing(t *testing.T) {
	is := is.New(t)

	c, err := New()
	is.NoErr(err)

	_, err = Get[*client](c)
	is.True(err != nil)
}

func TestContainer_ConstructorError(t *testing.T) {
	is := is.New(t)

	broken := errors.New("broken")
	c, err := New(Provider(func() (settings, error) {
		return settings{}, broken
	}))
	is.NoErr(err)

	_, err = Get[settings](c)
	is.Equal(dig.RootCause(err), broken)

	_, err = New(
		Provider(func() (settings, error) { return settings{}, broken }),
		Eager(func(settings) {}),
	)
	is.Equal(dig.RootCause(err), broken)
}

func TestContainer_Invoke(t *testing.T) {
	is := is.New(t)

	c, err := New(Value(settings{url: "x"}))
	is.NoErr(err)

	var got string
	is.NoErr(c.Invoke(func(s settings) {
		got = s.url
	}))
	is.Equal(got, "x")
}
