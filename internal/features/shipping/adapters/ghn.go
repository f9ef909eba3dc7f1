package adapter

import (
	"net/url"

	"order-hub/internal/features/shipping/domain"
)

// GHNCarrier maps requests to the Giao Hàng Nhanh API.
type GHNCarrier struct{}

// NewGHNCarrier creates the GHN mapper.
func NewGHNCarrier() *GHNCarrier {
	return &GHNCarrier{}
}

type ghnItem struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Weight   int    `json:"weight"`
}

type ghnCreateOrder struct {
	PaymentTypeID  int       `json:"payment_type_id"`
	Note           string    `json:"note"`
	RequiredNote   string    `json:"required_note"`
	ClientOrderNo  string    `json:"client_order_code"`
	ToName         string    `json:"to_name"`
	ToPhone        string    `json:"to_phone"`
	ToAddress      string    `json:"to_address"`
	ToWardName     string    `json:"to_ward_name"`
	ToDistrictName string    `json:"to_district_name"`
	ToProvinceName string    `json:"to_province_name"`
	CODAmount      int64     `json:"cod_amount"`
	InsuranceValue int64     `json:"insurance_value"`
	Weight         int       `json:"weight"`
	Length         int       `json:"length"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	ServiceID      int       `json:"service_id"`
	ServiceTypeID  int       `json:"service_type_id"`
	Items          []ghnItem `json:"items"`
}

type ghnFee struct {
	FromDistrictID int    `json:"from_district_id"`
	ToDistrictID   int    `json:"to_district_id"`
	ToWardCode     string `json:"to_ward_code"`
	ServiceID      int    `json:"service_id"`
	Weight         int    `json:"weight"`
	Length         int    `json:"length"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	InsuranceValue int64  `json:"insurance_value"`
	Coupon         string `json:"coupon"`
}

type ghnOrderCode struct {
	OrderCode string `json:"order_code"`
}

func (c *GHNCarrier) ID() domain.CarrierID { return domain.CarrierGHN }

// CreateShipment sends weights in grams; the recipient pays the fee (payment type 2).
func (c *GHNCarrier) CreateShipment(req domain.ShipmentRequest) domain.Call {
	items := make([]ghnItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ghnItem{
			Name:     it.Name,
			Code:     it.SKU,
			Quantity: it.Quantity,
			Price:    domain.VND(it.Price),
			Weight:   domain.OrDefault(it.WeightGrams, domain.DefaultItemWeightGrams),
		})
	}

	return domain.Post("/v2/shipping-order/create", ghnCreateOrder{
		PaymentTypeID:  2,
		Note:           req.Note,
		RequiredNote:   "KHONGCHOXEMHANG",
		ClientOrderNo:  req.OrderNumber,
		ToName:         req.Recipient.Name,
		ToPhone:        req.Recipient.Phone,
		ToAddress:      req.Recipient.Address,
		ToWardName:     req.Recipient.Ward,
		ToDistrictName: req.Recipient.District,
		ToProvinceName: req.Recipient.Province,
		CODAmount:      domain.VND(req.CODAmount),
		InsuranceValue: domain.VND(req.Parcel.DeclaredValue),
		Weight:         domain.OrDefault(req.Parcel.WeightGrams, domain.DefaultParcelWeightGrams),
		Length:         domain.OrDefault(req.Parcel.LengthCM, domain.DefaultDimensionCM),
		Width:          domain.OrDefault(req.Parcel.WidthCM, domain.DefaultDimensionCM),
		Height:         domain.OrDefault(req.Parcel.HeightCM, domain.DefaultDimensionCM),
		ServiceID:      req.ServiceID,
		ServiceTypeID:  req.ServiceTypeID,
		Items:          items,
	})
}

func (c *GHNCarrier) TrackShipment(trackingNumber string) (domain.Call, bool) {
	return domain.Get("/v2/shipping-order/detail?order_code=" + url.QueryEscape(trackingNumber)), true
}

func (c *GHNCarrier) CancelShipment(trackingNumber string) domain.Call {
	return domain.Post("/v2/shipping-order/cancel", ghnOrderCode{OrderCode: trackingNumber})
}

func (c *GHNCarrier) Provinces() domain.Call {
	return domain.Get("/master-data/province")
}

func (c *GHNCarrier) Services() domain.Call {
	return domain.Get("/v2/shipping-order/available-services")
}

func (c *GHNCarrier) CalculateFee(req domain.FeeRequest) domain.Call {
	return domain.Post("/v2/shipping-order/fee", ghnFee{
		FromDistrictID: req.FromDistrictID,
		ToDistrictID:   req.ToDistrictID,
		ToWardCode:     req.ToWardCode,
		ServiceID:      req.ServiceID,
		Weight:         domain.OrDefault(req.WeightGrams, domain.DefaultParcelWeightGrams),
		Length:         domain.OrDefault(req.LengthCM, domain.DefaultDimensionCM),
		Width:          domain.OrDefault(req.WidthCM, domain.DefaultDimensionCM),
		Height:         domain.OrDefault(req.HeightCM, domain.DefaultDimensionCM),
		InsuranceValue: domain.VND(req.DeclaredValue),
		Coupon:         req.Coupon,
	})
}
