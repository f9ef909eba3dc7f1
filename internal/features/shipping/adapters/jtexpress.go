package adapter

import (
	"net/http"
	"net/url"

	"order-hub/internal/features/shipping/domain"
)

// JTExpressCarrier maps requests to the J&T Express API. Weights are kilograms.
// J&T has no tracking endpoint.
type JTExpressCarrier struct {
	sender domain.Sender
}

// NewJTExpressCarrier creates the J&T Express mapper.
func NewJTExpressCarrier(sender domain.Sender) *JTExpressCarrier {
	return &JTExpressCarrier{sender: sender}
}

type jtParty struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Area    string `json:"area"`
	Address string `json:"address"`
}

type jtGoods struct {
	GoodsName   string  `json:"goods_name"`
	GoodsQty    int     `json:"goods_qty"`
	GoodsWeight float64 `json:"goods_weight"`
}

type jtItemsDetails struct {
	PackageDescription      string    `json:"package_description"`
	PackageWeight           float64   `json:"package_weight"`
	ActualWeight            float64   `json:"actual_weight"`
	PackageChargeableWeight float64   `json:"package_chargeable_weight"`
	PackageLength           int       `json:"package_length"`
	PackageWidth            int       `json:"package_width"`
	PackageHeight           int       `json:"package_height"`
	PackageContent          string    `json:"package_content"`
	GoodsDetails            []jtGoods `json:"goods_details"`
}

type jtTransactionDetails struct {
	CODValue          int64 `json:"cod_value"`
	TransactionAmount int64 `json:"transaction_amount"`
}

type jtCreateOrder struct {
	CustomerOrderNo    string               `json:"customer_order_no"`
	OrderStatus        string               `json:"order_status"`
	ServiceType        string               `json:"service_type"`
	Sender             jtParty              `json:"sender"`
	Receiver           jtParty              `json:"receiver"`
	ItemsDetails       jtItemsDetails       `json:"items_details"`
	TransactionDetails jtTransactionDetails `json:"transaction_details"`
}

type jtFee struct {
	ServiceType   string  `json:"service_type"`
	SenderArea    string  `json:"sender_area"`
	ReceiverArea  string  `json:"receiver_area"`
	PackageWeight float64 `json:"package_weight"`
	PackageLength int     `json:"package_length"`
	PackageWidth  int     `json:"package_width"`
	PackageHeight int     `json:"package_height"`
	CODValue      int64   `json:"cod_value"`
}

type jtCancel struct {
	CancelReason string `json:"cancel_reason"`
}

func (c *JTExpressCarrier) ID() domain.CarrierID { return domain.CarrierJTExpress }

func (c *JTExpressCarrier) CreateShipment(req domain.ShipmentRequest) domain.Call {
	goods := make([]jtGoods, 0, len(req.Items))
	for _, it := range req.Items {
		goods = append(goods, jtGoods{
			GoodsName:   it.Name,
			GoodsQty:    it.Quantity,
			GoodsWeight: domain.GramsToKg(domain.OrDefault(it.WeightGrams, domain.DefaultItemWeightGrams)),
		})
	}

	weight := domain.GramsToKg(domain.OrDefault(req.Parcel.WeightGrams, domain.DefaultParcelWeightGrams))
	description := req.Note
	if description == "" {
		description = "Order " + req.OrderNumber
	}

	return domain.Post("/v1/orders", jtCreateOrder{
		CustomerOrderNo: req.OrderNumber,
		OrderStatus:     "REQUEST",
		ServiceType:     "EZ",
		Sender: jtParty{
			Name:    c.sender.Name,
			Phone:   c.sender.Phone,
			Area:    c.sender.Province,
			Address: c.sender.Address,
		},
		Receiver: jtParty{
			Name:    req.Recipient.Name,
			Phone:   req.Recipient.Phone,
			Area:    req.Recipient.Province,
			Address: req.Recipient.Address,
		},
		ItemsDetails: jtItemsDetails{
			PackageDescription:      description,
			PackageWeight:           weight,
			ActualWeight:            weight,
			PackageChargeableWeight: weight,
			PackageLength:           domain.OrDefault(req.Parcel.LengthCM, domain.DefaultDimensionCM),
			PackageWidth:            domain.OrDefault(req.Parcel.WidthCM, domain.DefaultDimensionCM),
			PackageHeight:           domain.OrDefault(req.Parcel.HeightCM, domain.DefaultDimensionCM),
			PackageContent:          req.Note,
			GoodsDetails:            goods,
		},
		TransactionDetails: jtTransactionDetails{
			CODValue:          domain.VND(req.CODAmount),
			TransactionAmount: domain.VND(req.Parcel.DeclaredValue),
		},
	})
}

func (c *JTExpressCarrier) TrackShipment(string) (domain.Call, bool) {
	return domain.Call{}, false
}

func (c *JTExpressCarrier) CancelShipment(trackingNumber string) domain.Call {
	return domain.Call{
		Method: http.MethodPut,
		Path:   "/v1/orders/" + url.PathEscape(trackingNumber) + "/cancel",
		Body:   jtCancel{CancelReason: "Customer requested cancellation"},
	}
}

func (c *JTExpressCarrier) Provinces() domain.Call {
	return domain.Get("/v1/address/provinces")
}

func (c *JTExpressCarrier) Services() domain.Call {
	return domain.Get("/v1/services")
}

func (c *JTExpressCarrier) CalculateFee(req domain.FeeRequest) domain.Call {
	return domain.Post("/v1/orders/shipment-fee", jtFee{
		ServiceType:   "EZ",
		SenderArea:    firstNonEmpty(req.FromProvince, c.sender.Province),
		ReceiverArea:  req.ToProvince,
		PackageWeight: domain.GramsToKg(domain.OrDefault(req.WeightGrams, domain.DefaultParcelWeightGrams)),
		PackageLength: domain.OrDefault(req.LengthCM, domain.DefaultDimensionCM),
		PackageWidth:  domain.OrDefault(req.WidthCM, domain.DefaultDimensionCM),
		PackageHeight: domain.OrDefault(req.HeightCM, domain.DefaultDimensionCM),
		CODValue:      domain.VND(req.CODAmount),
	})
}
