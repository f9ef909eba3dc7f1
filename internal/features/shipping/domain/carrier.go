package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CarrierID identifies a shipping carrier.
type CarrierID string

const (
	CarrierGHN         CarrierID = "ghn"
	CarrierGHTK        CarrierID = "ghtk"
	CarrierViettelPost CarrierID = "viettel_post"
	CarrierJTExpress   CarrierID = "jt_express"
	// CarrierOther marks self-arranged delivery; it has no live integration.
	CarrierOther CarrierID = "other"
)

// ErrUnknownCarrier is returned by ParseCarrierID for values outside the enum.
var ErrUnknownCarrier = errors.New("unknown carrier")

// AllCarrierIDs lists every value a shipping record may hold, in display order.
func AllCarrierIDs() []CarrierID {
	return []CarrierID{CarrierGHN, CarrierGHTK, CarrierViettelPost, CarrierJTExpress, CarrierOther}
}

// ParseCarrierID validates s against the carrier enum.
func ParseCarrierID(s string) (CarrierID, error) {
	for _, id := range AllCarrierIDs() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q (allowed: %s)", ErrUnknownCarrier, s, joinCarrierIDs())
}

func joinCarrierIDs() string {
	ids := AllCarrierIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

// Operation names one of the uniform shipping operations.
type Operation string

const (
	OpCreateShipment Operation = "createShipment"
	OpTrackShipment  Operation = "trackShipment"
	OpCancelShipment Operation = "cancelShipment"
	OpGetProvinces   Operation = "getProvinces"
	OpGetServices    Operation = "getServices"
	OpCalculateFee   Operation = "calculateFee"
)

// AuthScheme describes how a carrier expects its API key.
type AuthScheme struct {
	Header string
	Prefix string
}

// Value returns the header value for the given key.
func (a AuthScheme) Value(apiKey string) string {
	return a.Prefix + apiKey
}

// CarrierProfile is the static metadata of a live carrier integration.
type CarrierProfile struct {
	ID             CarrierID
	DisplayName    string
	Auth           AuthScheme
	NativeTracking bool
	// TrackingSlug is the aggregator courier code used when NativeTracking is false.
	TrackingSlug string
}

var profiles = map[CarrierID]CarrierProfile{
	CarrierGHN: {
		ID:             CarrierGHN,
		DisplayName:    "Giao Hàng Nhanh",
		Auth:           AuthScheme{Header: "Token"},
		NativeTracking: true,
	},
	CarrierGHTK: {
		ID:             CarrierGHTK,
		DisplayName:    "Giao Hàng Tiết Kiệm",
		Auth:           AuthScheme{Header: "X-API-Key"},
		NativeTracking: true,
	},
	CarrierViettelPost: {
		ID:             CarrierViettelPost,
		DisplayName:    "Viettel Post",
		Auth:           AuthScheme{Header: "Token"},
		NativeTracking: true,
	},
	CarrierJTExpress: {
		ID:             CarrierJTExpress,
		DisplayName:    "J&T Express",
		Auth:           AuthScheme{Header: "Authorization", Prefix: "Bearer "},
		NativeTracking: false,
		TrackingSlug:   "jnt",
	},
}

// Profile returns the profile of a live carrier. "other" and unknown ids report false.
func Profile(id CarrierID) (CarrierProfile, bool) {
	p, ok := profiles[id]
	return p, ok
}

// LiveCarrierIDs lists the carriers that have an API integration.
func LiveCarrierIDs() []CarrierID {
	return []CarrierID{CarrierGHN, CarrierGHTK, CarrierViettelPost, CarrierJTExpress}
}

// Connection is the credential and endpoint of one carrier account.
type Connection struct {
	APIKey  string
	BaseURL string
}

// Connected reports whether an API key is present.
func (c Connection) Connected() bool {
	return c.APIKey != ""
}

// CarrierInfo is the public view of a live carrier.
type CarrierInfo struct {
	ID             CarrierID `json:"id"`
	Name           string    `json:"name"`
	APIConnected   bool      `json:"api_connected"`
	NativeTracking bool      `json:"native_tracking"`
}
