package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver/drivertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleOf(t *testing.T) {
	page := drivertest.NewPage()
	el := drivertest.Text("hi")
	page.Set("#x", el)

	tests := []struct {
		name string
		v    any
		kind driver.Kind
	}{
		{"page", page, driver.KindPage},
		{"frame", drivertest.NewFrame("about:blank"), driver.KindFrame},
		{"element", el, driver.KindElement},
		{"locator", page.Locator("#x"), driver.KindLocator},
		{"handle", driver.PageHandle(page), driver.KindPage},
		{"pending", func(context.Context) (driver.Handle, error) { return driver.PageHandle(page), nil }, driver.KindPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := driver.HandleOf(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, h.Kind())
			assert.True(t, h.IsValid())
		})
	}
}

func TestHandleOf_Unsupported(t *testing.T) {
	_, err := driver.HandleOf(42)
	assert.Error(t, err)

	_, err = driver.HandleOf(nil)
	assert.Error(t, err)
}

func TestHandle_Await(t *testing.T) {
	page := drivertest.NewPage()
	inner := driver.Pending(func(context.Context) (driver.Handle, error) {
		return driver.PageHandle(page), nil
	})
	outer := driver.Pending(func(context.Context) (driver.Handle, error) {
		return inner, nil
	})

	h, err := outer.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, driver.KindPage, h.Kind())
	p, ok := h.Page()
	assert.True(t, ok)
	assert.Same(t, page, p)
}

func TestHandle_AwaitError(t *testing.T) {
	boom := errors.New("boom")
	h := driver.Pending(func(context.Context) (driver.Handle, error) {
		return driver.Handle{}, boom
	})

	_, err := h.Await(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = driver.Handle{}.Await(context.Background())
	assert.Error(t, err)
}

func TestHandle_Container(t *testing.T) {
	page := drivertest.NewPage()

	c, ok := driver.PageHandle(page).Container()
	assert.True(t, ok)
	assert.Same(t, page, c)

	_, ok = driver.ElementHandleOf(drivertest.Text("x")).Container()
	assert.False(t, ok)
}
