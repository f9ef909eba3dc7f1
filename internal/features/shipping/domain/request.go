package domain

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// Defaults applied by every mapper when the canonical value is zero.
const (
	DefaultParcelWeightGrams = 1000
	DefaultItemWeightGrams   = 500
	DefaultDimensionCM       = 15
)

// Sender is the pick-up address of the shop.
type Sender struct {
	Name     string
	Phone    string
	Address  string
	Province string
	District string
}

// Recipient is the delivery address of a shipment.
type Recipient struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Ward     string `json:"ward,omitempty"`
	District string `json:"district,omitempty"`
	Province string `json:"province,omitempty"`
}

// Parcel holds the physical package data in grams and centimetres.
type Parcel struct {
	WeightGrams   int             `json:"weight_grams" validate:"gte=0"`
	LengthCM      int             `json:"length_cm" validate:"gte=0"`
	WidthCM       int             `json:"width_cm" validate:"gte=0"`
	HeightCM      int             `json:"height_cm" validate:"gte=0"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
}

// Item is one line of a shipment.
type Item struct {
	Name        string          `json:"name" validate:"required"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	Price       decimal.Decimal `json:"price"`
	WeightGrams int             `json:"weight_grams" validate:"gte=0"`
}

// ShipmentRequest is the carrier-agnostic description of a parcel to ship.
type ShipmentRequest struct {
	OrderNumber   string          `json:"order_number" validate:"required"`
	Recipient     Recipient       `json:"recipient"`
	Parcel        Parcel          `json:"parcel"`
	CODAmount     decimal.Decimal `json:"cod_amount"`
	Note          string          `json:"note,omitempty"`
	ServiceID     int             `json:"service_id,omitempty"`
	ServiceTypeID int             `json:"service_type_id,omitempty"`
	Items         []Item          `json:"items" validate:"dive"`
}

// FeeRequest is the carrier-agnostic input of a fee quote. Carriers read
// the subset of location fields their API understands.
type FeeRequest struct {
	FromProvince   string          `json:"from_province,omitempty"`
	FromDistrict   string          `json:"from_district,omitempty"`
	ToProvince     string          `json:"to_province,omitempty"`
	ToDistrict     string          `json:"to_district,omitempty"`
	ToWardCode     string          `json:"to_ward_code,omitempty"`
	FromProvinceID int             `json:"from_province_id,omitempty"`
	FromDistrictID int             `json:"from_district_id,omitempty"`
	ToProvinceID   int             `json:"to_province_id,omitempty"`
	ToDistrictID   int             `json:"to_district_id,omitempty"`
	WeightGrams    int             `json:"weight_grams" validate:"gte=0"`
	LengthCM       int             `json:"length_cm" validate:"gte=0"`
	WidthCM        int             `json:"width_cm" validate:"gte=0"`
	HeightCM       int             `json:"height_cm" validate:"gte=0"`
	DeclaredValue  decimal.Decimal `json:"declared_value"`
	CODAmount      decimal.Decimal `json:"cod_amount"`
	ServiceID      int             `json:"service_id,omitempty"`
	Coupon         string          `json:"coupon,omitempty"`
}

// Payload carries the operation-specific input of a facade call.
type Payload struct {
	Shipment       *ShipmentRequest
	Fee            *FeeRequest
	TrackingNumber string
}

// Call is a carrier endpoint invocation produced by a mapper.
type Call struct {
	Method string
	Path   string
	Body   any
}

// Get builds a body-less GET call.
func Get(path string) Call {
	return Call{Method: http.MethodGet, Path: path}
}

// Post builds a POST call with a JSON body.
func Post(path string, body any) Call {
	return Call{Method: http.MethodPost, Path: path, Body: body}
}

// Request is one fully resolved outbound HTTP call.
type Request struct {
	// Upstream names the remote party for logs and rate limiting.
	Upstream string
	Method   string
	BaseURL  string
	Path     string
	Headers  map[string]string
	Body     any
}

// OrDefault returns v, or def when v is not positive.
func OrDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// GramsToKg converts grams to kilograms.
func GramsToKg(grams int) float64 {
	return decimal.NewFromInt(int64(grams)).Shift(-3).InexactFloat64()
}

// VND rounds a money amount to whole dong.
func VND(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
