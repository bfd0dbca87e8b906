package fulfillment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/worldwire"
)

// asyncCommandTimeout bounds the background pack and load requests
const asyncCommandTimeout = time.Minute

// WorldGateway issues fulfillment commands to the world simulator
type WorldGateway interface {
	RequestPurchase(ctx context.Context, warehouseID, productID int64, description string, quantity int64) (int64, error)
	RequestPack(ctx context.Context, warehouseID, shipmentID int64, items []worldwire.Item) error
	RequestLoad(ctx context.Context, warehouseID, truckID, shipmentID int64) error
	QueryPackage(ctx context.Context, packageID int64) (string, error)
}

// CarrierNotifier publishes shipment lifecycle events to the carrier
type CarrierNotifier interface {
	PackageCreated(ctx context.Context, shipment *fulfillment.Shipment) error
	PackagePacked(ctx context.Context, shipmentNo int64) error
	PackageLoaded(ctx context.Context, shipmentNo, truckID int64) error
}

// ShipmentService drives the shipment state machine. World events and carrier
// webhooks both land here; the mutex serializes them so the race between the
// warehouse finishing packing and the carrier's truck arriving always merges
// into one loading transition.
type ShipmentService struct {
	shipments  fulfillment.ShipmentRepository
	orders     fulfillment.OrderRepository
	warehouses fulfillment.WarehouseRepository
	scope      TransactionScope
	logger     *zap.Logger

	world          WorldGateway
	carrier        CarrierNotifier
	eventPublisher shared.EventPublisher

	mu sync.Mutex
	// pendingTrucks holds trucks that arrived before their shipment finished
	// packing, keyed by shipment number
	pendingTrucks map[int64]int64
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	shipments fulfillment.ShipmentRepository,
	orders fulfillment.OrderRepository,
	warehouses fulfillment.WarehouseRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipments:     shipments,
		orders:        orders,
		warehouses:    warehouses,
		scope:         scope,
		logger:        logger.Named("fulfillment"),
		pendingTrucks: make(map[int64]int64),
	}
}

// SetWorldGateway wires the world simulator gateway
func (s *ShipmentService) SetWorldGateway(world WorldGateway) {
	s.world = world
}

// SetCarrierNotifier wires the carrier event publisher
func (s *ShipmentService) SetCarrierNotifier(carrier CarrierNotifier) {
	s.carrier = carrier
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ShipmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateShipment starts fulfilling an order: allocate a shipment number, copy
// the order's items, announce the package to the carrier and ask the
// warehouse to pack. Packing completes asynchronously via HandlePackageReady.
func (s *ShipmentService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.shipments.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, shared.NewDomainError("SHIPMENT_EXISTS", "Order is already being fulfilled")
	}

	if _, err := s.warehouses.FindByID(ctx, req.WarehouseID); err != nil {
		return nil, shared.NewDomainError("UNKNOWN_WAREHOUSE", "Warehouse is not part of the connected world")
	}

	shipmentNo, err := s.shipments.NextShipmentNo(ctx)
	if err != nil {
		return nil, err
	}

	shipment, err := fulfillment.NewShipment(shipmentNo, order.ID, req.WarehouseID,
		order.DestX, order.DestY, order.CarrierAccount, order.ItemInputs())
	if err != nil {
		return nil, err
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, shipment)

	if err := s.carrier.PackageCreated(ctx, shipment); err != nil {
		// The shipment exists either way; the carrier channel retries on its own
		s.logger.Error("failed to queue package created event",
			zap.Int64("shipment_no", shipmentNo), zap.Error(err))
	}
	s.requestPack(shipment)

	s.logger.Info("shipment created",
		zap.Int64("shipment_no", shipmentNo),
		zap.String("order_id", order.ID.String()),
		zap.Int64("warehouse_id", req.WarehouseID))

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// GetShipment retrieves a shipment by its number
func (s *ShipmentService) GetShipment(ctx context.Context, shipmentNo int64) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByNo(ctx, shipmentNo)
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// UpdateDestination changes a shipment's destination while that is still
// possible
func (s *ShipmentService) UpdateDestination(ctx context.Context, shipmentNo int64, req UpdateDestinationRequest) (*ShipmentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shipment, err := s.shipments.FindByNo(ctx, shipmentNo)
	if err != nil {
		return nil, err
	}
	if err := shipment.UpdateDestination(req.DestX, req.DestY); err != nil {
		return nil, err
	}
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, err
	}

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// PurchaseStock orders more goods from the world. The purchase is
// fire-and-forget; stock lands later through HandleGoodsArrived.
func (s *ShipmentService) PurchaseStock(ctx context.Context, req PurchaseStockRequest) (int64, error) {
	if _, err := s.warehouses.FindByID(ctx, req.WarehouseID); err != nil {
		return 0, shared.NewDomainError("UNKNOWN_WAREHOUSE", "Warehouse is not part of the connected world")
	}
	return s.world.RequestPurchase(ctx, req.WarehouseID, req.ProductID, req.Description, req.Quantity)
}

// QueryPackageStatus asks the world for a package's current status
func (s *ShipmentService) QueryPackageStatus(ctx context.Context, packageID int64) (string, error) {
	return s.world.QueryPackage(ctx, packageID)
}

// HandleGoodsArrived records purchased goods landing at a warehouse
func (s *ShipmentService) HandleGoodsArrived(ctx context.Context, warehouseID int64, items []worldwire.Item) error {
	for _, item := range items {
		if err := s.warehouses.AddStock(ctx, warehouseID, item.ID, item.Description, item.Count); err != nil {
			return err
		}
		s.logger.Info("goods arrived",
			zap.Int64("warehouse_id", warehouseID),
			zap.Int64("product_id", item.ID),
			zap.Int64("quantity", item.Count))
	}
	return nil
}

// HandlePackageReady reacts to the warehouse finishing packing. If the
// carrier's truck already arrived the shipment goes straight to loading;
// otherwise it waits in packed and the carrier is told to send a truck.
func (s *ShipmentService) HandlePackageReady(ctx context.Context, shipmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shipment, err := s.shipments.FindByNo(ctx, shipmentID)
	if err != nil {
		return err
	}

	if truckID, waiting := s.pendingTrucks[shipmentID]; waiting {
		delete(s.pendingTrucks, shipmentID)
		return s.startLoading(ctx, shipment, truckID)
	}

	if shipment.Status != fulfillment.ShipmentStatusPacking {
		// Redelivered event; the shipment already moved on
		return nil
	}
	if err := shipment.MarkPacked(); err != nil {
		return err
	}
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return err
	}
	s.publishEvents(ctx, shipment)

	return s.carrier.PackagePacked(ctx, shipmentID)
}

// HandleTruckArrived reacts to the carrier's truck reaching the warehouse.
// If packing is still in progress the truck is remembered and picked up by
// HandlePackageReady; a truck for an unknown shipment is an error.
func (s *ShipmentService) HandleTruckArrived(ctx context.Context, shipmentNo, truckID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shipment, err := s.shipments.FindByNo(ctx, shipmentNo)
	if err != nil {
		return err
	}

	switch shipment.Status {
	case fulfillment.ShipmentStatusPacking:
		s.pendingTrucks[shipmentNo] = truckID
		s.logger.Info("truck arrived before packing finished",
			zap.Int64("shipment_no", shipmentNo),
			zap.Int64("truck_id", truckID))
		return nil
	case fulfillment.ShipmentStatusPacked:
		return s.startLoading(ctx, shipment, truckID)
	default:
		// Redelivered webhook; the shipment already has its truck
		s.logger.Debug("ignoring truck arrival in status "+shipment.Status.String(),
			zap.Int64("shipment_no", shipmentNo))
		return nil
	}
}

// startLoading moves the shipment to loading and asks the warehouse to load.
// Callers must hold the mutex.
func (s *ShipmentService) startLoading(ctx context.Context, shipment *fulfillment.Shipment, truckID int64) error {
	if err := shipment.StartLoading(truckID); err != nil {
		return err
	}
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return err
	}
	s.publishEvents(ctx, shipment)
	s.requestLoad(shipment.WarehouseID, truckID, shipment.ShipmentNo)
	return nil
}

// HandlePackageLoaded reacts to the warehouse loading the package onto the
// truck and tells the carrier it may depart
func (s *ShipmentService) HandlePackageLoaded(ctx context.Context, shipmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shipment, err := s.shipments.FindByNo(ctx, shipmentID)
	if err != nil {
		return err
	}
	if shipment.Status != fulfillment.ShipmentStatusLoading {
		return nil
	}
	if shipment.TruckID == nil {
		return shared.NewDomainError("TRUCK_MISMATCH", "Loaded notification for a shipment without a truck")
	}

	truckID := *shipment.TruckID
	if err := shipment.MarkLoaded(truckID); err != nil {
		return err
	}
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return err
	}
	s.publishEvents(ctx, shipment)

	return s.carrier.PackageLoaded(ctx, shipmentID, truckID)
}

// HandleTrackingAssigned stores the tracking number the carrier assigned
func (s *ShipmentService) HandleTrackingAssigned(ctx context.Context, shipmentNo int64, trackingID string) error {
	shipment, err := s.shipments.FindByNo(ctx, shipmentNo)
	if err != nil {
		return err
	}
	if err := shipment.AssignTracking(trackingID); err != nil {
		return err
	}
	return s.shipments.Update(ctx, shipment)
}

// HandleStatusUpdate applies a carrier status update to the shipment
func (s *ShipmentService) HandleStatusUpdate(ctx context.Context, shipmentNo int64, status string) error {
	switch status {
	case "delivering":
		s.mu.Lock()
		defer s.mu.Unlock()

		shipment, err := s.shipments.FindByNo(ctx, shipmentNo)
		if err != nil {
			return err
		}
		if shipment.Status != fulfillment.ShipmentStatusLoaded {
			return nil
		}
		if err := shipment.StartDelivering(); err != nil {
			return err
		}
		if err := s.shipments.Update(ctx, shipment); err != nil {
			return err
		}
		s.publishEvents(ctx, shipment)
		return nil
	case "delivered":
		return s.HandleDelivered(ctx, shipmentNo)
	default:
		return shared.NewDomainError("UNKNOWN_STATUS", "Unknown carrier status "+status)
	}
}

// HandleDelivered records final delivery and, once every shipment of the
// order has arrived, marks the order fulfilled. Both writes share one
// transaction, and redeliveries re-run the order check: if a previous
// attempt committed the shipment but failed on the order, the next webhook
// must still fulfill it.
func (s *ShipmentService) HandleDelivered(ctx context.Context, shipmentNo int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		delivered *fulfillment.Shipment
		fulfilled *fulfillment.Order
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		delivered, fulfilled = nil, nil

		shipment, err := repos.ShipmentRepo().FindByNo(ctx, shipmentNo)
		if err != nil {
			return err
		}
		if !shipment.IsDelivered() {
			if err := shipment.MarkDelivered(); err != nil {
				return err
			}
			if err := repos.ShipmentRepo().Update(ctx, shipment); err != nil {
				return err
			}
			delivered = shipment
		}

		fulfilled, err = fulfillOrderIfComplete(ctx, repos, shipment.OrderID)
		return err
	})
	if err != nil {
		return err
	}

	if delivered != nil {
		s.publishEvents(ctx, delivered)
		s.logger.Info("shipment delivered", zap.Int64("shipment_no", shipmentNo))
	}
	if fulfilled != nil {
		s.publishEvents(ctx, fulfilled)
		s.logger.Info("order fulfilled", zap.String("order_id", fulfilled.ID.String()))
	}
	return nil
}

// fulfillOrderIfComplete marks the order fulfilled once all of its shipments
// are delivered, within the caller's transaction. Returns the order when it
// transitioned, nil when there is nothing to do.
func fulfillOrderIfComplete(ctx context.Context, repos TransactionalRepositories, orderID uuid.UUID) (*fulfillment.Order, error) {
	shipments, err := repos.ShipmentRepo().FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, shipment := range shipments {
		if !shipment.IsDelivered() {
			return nil, nil
		}
	}

	order, err := repos.OrderRepo().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsFulfilled() {
		return nil, nil
	}
	order.MarkFulfilled()
	if err := repos.OrderRepo().Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// requestPack asks the warehouse to pack in the background. The blocking
// gateway call only observes the outcome; the actual state transition happens
// when the ready event is dispatched.
func (s *ShipmentService) requestPack(shipment *fulfillment.Shipment) {
	items := make([]worldwire.Item, 0, len(shipment.Items))
	for _, it := range shipment.Items {
		items = append(items, worldwire.Item{
			ID:          it.ProductID,
			Description: it.Description,
			Count:       it.Quantity,
		})
	}
	warehouseID := shipment.WarehouseID
	shipmentNo := shipment.ShipmentNo

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncCommandTimeout)
		defer cancel()
		if err := s.world.RequestPack(ctx, warehouseID, shipmentNo, items); err != nil {
			s.logger.Warn("pack request did not complete",
				zap.Int64("shipment_no", shipmentNo), zap.Error(err))
		}
	}()
}

func (s *ShipmentService) requestLoad(warehouseID, truckID, shipmentNo int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncCommandTimeout)
		defer cancel()
		if err := s.world.RequestLoad(ctx, warehouseID, truckID, shipmentNo); err != nil {
			s.logger.Warn("load request did not complete",
				zap.Int64("shipment_no", shipmentNo), zap.Error(err))
		}
	}()
}

// publishEvents publishes and clears the aggregate's pending events
func (s *ShipmentService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}
