// Package catalog describes the categories records are filed under. The catalog is
// read-only input: it provides names, icons and ordering, never mutations.
package catalog

import (
	"context"
	"strings"

	"famledger/internal/core"
)

// Icon is one of the icon identifiers the clients know how to draw.
type Icon string

const (
	IconFolder    Icon = "folder"
	IconHome      Icon = "home"
	IconCart      Icon = "shopping-cart"
	IconUtensils  Icon = "utensils"
	IconCar       Icon = "car"
	IconBus       Icon = "bus"
	IconHeart     Icon = "heart"
	IconPill      Icon = "pill"
	IconBaby      Icon = "baby"
	IconShirt     Icon = "shirt"
	IconGift      Icon = "gift"
	IconPlane     Icon = "plane"
	IconBook      Icon = "book"
	IconGamepad   Icon = "gamepad"
	IconZap       Icon = "zap"
	IconPhone     Icon = "phone"
	IconWifi      Icon = "wifi"
	IconBriefcase Icon = "briefcase"
	IconWallet    Icon = "wallet"
	IconPiggyBank Icon = "piggy-bank"
	IconTrending  Icon = "trending-up"
	IconReceipt   Icon = "receipt"
	IconDumbbell  Icon = "dumbbell"
	IconPaw       Icon = "paw"
)

// DefaultIcon is used for unknown or empty icon names.
const DefaultIcon = IconFolder

var icons = map[Icon]struct{}{
	IconFolder: {}, IconHome: {}, IconCart: {}, IconUtensils: {}, IconCar: {}, IconBus: {},
	IconHeart: {}, IconPill: {}, IconBaby: {}, IconShirt: {}, IconGift: {}, IconPlane: {},
	IconBook: {}, IconGamepad: {}, IconZap: {}, IconPhone: {}, IconWifi: {}, IconBriefcase: {},
	IconWallet: {}, IconPiggyBank: {}, IconTrending: {}, IconReceipt: {}, IconDumbbell: {},
	IconPaw: {},
}

// ParseIcon maps a stored icon name onto the closed set. Names are matched
// case-insensitively and "_" is accepted for "-". Anything else is DefaultIcon.
func ParseIcon(name string) Icon {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	if _, ok := icons[Icon(name)]; ok {
		return Icon(name)
	}
	return DefaultIcon
}

// Category is a named bucket for records of one kind.
type Category struct {
	ID     string    `json:"id"`
	Kind   core.Kind `json:"kind"`
	Name   string    `json:"name"`
	Icon   Icon      `json:"icon"`
	Active bool      `json:"active"`
}

// Reader is the Category Catalog port.
type Reader interface {
	// ListCategories returns the active categories of kind. An empty kind lists all.
	ListCategories(ctx context.Context, kind core.Kind) ([]Category, error)
	// GetCategory returns core.ErrNotFound for unknown ids.
	GetCategory(ctx context.Context, id string) (Category, error)
}
