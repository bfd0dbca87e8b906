package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/fulfillment"
)

// OrderService handles the fulfillment view of customer orders
type OrderService struct {
	orders    fulfillment.OrderRepository
	shipments fulfillment.ShipmentRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orders fulfillment.OrderRepository, shipments fulfillment.ShipmentRepository) *OrderService {
	return &OrderService{
		orders:    orders,
		shipments: shipments,
	}
}

// CreateOrder registers an order for fulfillment
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	items := make([]fulfillment.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, fulfillment.ItemInput{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
		})
	}

	order, err := fulfillment.NewOrder(req.DestX, req.DestY, req.CarrierAccount, items)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrderShipments retrieves all shipments fulfilling an order
func (s *OrderService) GetOrderShipments(ctx context.Context, orderID uuid.UUID) ([]ShipmentResponse, error) {
	shipments, err := s.shipments.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]ShipmentResponse, 0, len(shipments))
	for _, shipment := range shipments {
		responses = append(responses, ToShipmentResponse(shipment))
	}
	return responses, nil
}
