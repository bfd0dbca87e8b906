package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/worldwire"
)

type memShipments struct {
	mu     sync.Mutex
	byNo   map[int64]*fulfillment.Shipment
	nextNo int64
}

func newMemShipments() *memShipments {
	return &memShipments{byNo: make(map[int64]*fulfillment.Shipment)}
}

func (m *memShipments) Save(_ context.Context, shipment *fulfillment.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byNo[shipment.ShipmentNo] = shipment
	return nil
}

func (m *memShipments) Update(_ context.Context, shipment *fulfillment.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byNo[shipment.ShipmentNo]; !ok {
		return shared.ErrNotFound
	}
	m.byNo[shipment.ShipmentNo] = shipment
	return nil
}

func (m *memShipments) FindByNo(_ context.Context, shipmentNo int64) (*fulfillment.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shipment, ok := m.byNo[shipmentNo]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return shipment, nil
}

func (m *memShipments) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]*fulfillment.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*fulfillment.Shipment
	for _, shipment := range m.byNo {
		if shipment.OrderID == orderID {
			out = append(out, shipment)
		}
	}
	return out, nil
}

func (m *memShipments) NextShipmentNo(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNo++
	return m.nextNo, nil
}

type memOrders struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*fulfillment.Order
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[uuid.UUID]*fulfillment.Order)}
}

func (m *memOrders) Save(_ context.Context, order *fulfillment.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[order.ID] = order
	return nil
}

func (m *memOrders) Update(_ context.Context, order *fulfillment.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[order.ID]; !ok {
		return shared.ErrNotFound
	}
	m.byID[order.ID] = order
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

type stockKey struct {
	warehouseID int64
	productID   int64
}

type memWarehouses struct {
	mu         sync.Mutex
	warehouses map[int64]fulfillment.Warehouse
	stock      map[stockKey]int64
}

func newMemWarehouses(ids ...int64) *memWarehouses {
	m := &memWarehouses{
		warehouses: make(map[int64]fulfillment.Warehouse),
		stock:      make(map[stockKey]int64),
	}
	for _, id := range ids {
		m.warehouses[id] = fulfillment.Warehouse{ID: id}
	}
	return m
}

func (m *memWarehouses) ReplaceAll(_ context.Context, warehouses []fulfillment.Warehouse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warehouses = make(map[int64]fulfillment.Warehouse)
	for _, w := range warehouses {
		m.warehouses[w.ID] = w
	}
	return nil
}

func (m *memWarehouses) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warehouses = make(map[int64]fulfillment.Warehouse)
	return nil
}

func (m *memWarehouses) FindByID(_ context.Context, id int64) (*fulfillment.Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.warehouses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &w, nil
}

func (m *memWarehouses) List(context.Context) ([]fulfillment.Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]fulfillment.Warehouse, 0, len(m.warehouses))
	for _, w := range m.warehouses {
		out = append(out, w)
	}
	return out, nil
}

func (m *memWarehouses) AddStock(_ context.Context, warehouseID, productID int64, _ string, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[stockKey{warehouseID, productID}] += quantity
	return nil
}

func (m *memWarehouses) stockOf(warehouseID, productID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[stockKey{warehouseID, productID}]
}

type packCall struct {
	warehouseID int64
	shipmentID  int64
	items       []worldwire.Item
}

type loadCall struct {
	warehouseID int64
	truckID     int64
	shipmentID  int64
}

type fakeWorld struct {
	mu        sync.Mutex
	purchases []worldwire.BuyCmd
	packs     []packCall
	loads     []loadCall
	status    string
	nextSeq   int64
}

func (w *fakeWorld) RequestPurchase(_ context.Context, warehouseID, productID int64, description string, quantity int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextSeq++
	w.purchases = append(w.purchases, worldwire.BuyCmd{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		Seq:         w.nextSeq,
	})
	return w.nextSeq, nil
}

func (w *fakeWorld) RequestPack(_ context.Context, warehouseID, shipmentID int64, items []worldwire.Item) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.packs = append(w.packs, packCall{warehouseID, shipmentID, items})
	return nil
}

func (w *fakeWorld) RequestLoad(_ context.Context, warehouseID, truckID, shipmentID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loads = append(w.loads, loadCall{warehouseID, truckID, shipmentID})
	return nil
}

func (w *fakeWorld) QueryPackage(context.Context, int64) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status, nil
}

func (w *fakeWorld) packCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.packs)
}

func (w *fakeWorld) loadCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.loads)
}

func (w *fakeWorld) lastLoad() loadCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loads[len(w.loads)-1]
}

type fakeCarrier struct {
	mu      sync.Mutex
	created []int64
	packed  []int64
	loaded  []loadCall
}

func (c *fakeCarrier) PackageCreated(_ context.Context, shipment *fulfillment.Shipment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, shipment.ShipmentNo)
	return nil
}

func (c *fakeCarrier) PackagePacked(_ context.Context, shipmentNo int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packed = append(c.packed, shipmentNo)
	return nil
}

func (c *fakeCarrier) PackageLoaded(_ context.Context, shipmentNo, truckID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = append(c.loaded, loadCall{truckID: truckID, shipmentID: shipmentNo})
	return nil
}

func (c *fakeCarrier) packedNos() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.packed...)
}

type fixture struct {
	service    *ShipmentService
	orders     *OrderService
	shipments  *memShipments
	orderRepo  *memOrders
	warehouses *memWarehouses
	world      *fakeWorld
	carrier    *fakeCarrier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	shipments := newMemShipments()
	orderRepo := newMemOrders()
	warehouses := newMemWarehouses(1, 2)
	world := &fakeWorld{}
	carrier := &fakeCarrier{}

	service := NewShipmentService(shipments, orderRepo, warehouses,
		NewNoOpTransactionScope(shipments, orderRepo), zap.NewNop())
	service.SetWorldGateway(world)
	service.SetCarrierNotifier(carrier)

	return &fixture{
		service:    service,
		orders:     NewOrderService(orderRepo, shipments),
		shipments:  shipments,
		orderRepo:  orderRepo,
		warehouses: warehouses,
		world:      world,
		carrier:    carrier,
	}
}

func (f *fixture) createOrder(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		DestX: 10,
		DestY: 20,
		Items: []OrderItemRequest{
			{ProductID: 1, Description: "soap", Quantity: 2},
			{ProductID: 2, Description: "towel", Quantity: 1},
		},
	})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) createShipment(t *testing.T) *ShipmentResponse {
	t.Helper()
	orderID := f.createOrder(t)
	resp, err := f.service.CreateShipment(context.Background(), CreateShipmentRequest{
		OrderID:     orderID,
		WarehouseID: 1,
	})
	require.NoError(t, err)

	// The pack request runs in the background
	require.Eventually(t, func() bool { return f.world.packCount() == 1 },
		time.Second, 10*time.Millisecond)
	return resp
}

func TestCreateShipment(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)

	assert.Equal(t, int64(1), resp.ShipmentNo)
	assert.Equal(t, fulfillment.ShipmentStatusPacking.String(), resp.Status)
	assert.Equal(t, int64(10), resp.DestX)
	assert.Equal(t, int64(20), resp.DestY)
	assert.Len(t, resp.Items, 2)

	assert.Equal(t, []int64{1}, f.carrier.created)

	f.world.mu.Lock()
	defer f.world.mu.Unlock()
	require.Len(t, f.world.packs, 1)
	assert.Equal(t, int64(1), f.world.packs[0].warehouseID)
	assert.Equal(t, int64(1), f.world.packs[0].shipmentID)
	assert.Len(t, f.world.packs[0].items, 2)
}

func TestCreateShipment_OrderAlreadyFulfilling(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)

	_, err := f.service.CreateShipment(context.Background(), CreateShipmentRequest{
		OrderID:     resp.OrderID,
		WarehouseID: 1,
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "SHIPMENT_EXISTS", domainErr.Code)
}

func TestCreateShipment_UnknownWarehouse(t *testing.T) {
	f := newFixture(t)
	orderID := f.createOrder(t)

	_, err := f.service.CreateShipment(context.Background(), CreateShipmentRequest{
		OrderID:     orderID,
		WarehouseID: 99,
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNKNOWN_WAREHOUSE", domainErr.Code)
}

func TestHandlePackageReady_NoTruckYet(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))

	shipment, err := f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusPacked, shipment.Status)
	assert.Equal(t, []int64{resp.ShipmentNo}, f.carrier.packedNos())
	assert.Equal(t, 0, f.world.loadCount())
}

func TestHandlePackageReady_Redelivered(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))

	// Only the first delivery tells the carrier
	assert.Equal(t, []int64{resp.ShipmentNo}, f.carrier.packedNos())
}

func TestTruckArrivesAfterPacked(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandleTruckArrived(ctx, resp.ShipmentNo, 55))

	shipment, err := f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusLoading, shipment.Status)
	require.NotNil(t, shipment.TruckID)
	assert.Equal(t, int64(55), *shipment.TruckID)

	require.Eventually(t, func() bool { return f.world.loadCount() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, loadCall{warehouseID: 1, truckID: 55, shipmentID: resp.ShipmentNo}, f.world.lastLoad())
}

func TestTruckArrivesBeforePackingFinished(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	// Truck first: shipment is still packing, so the truck waits
	require.NoError(t, f.service.HandleTruckArrived(ctx, resp.ShipmentNo, 7))

	shipment, err := f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusPacking, shipment.Status)
	assert.Equal(t, 0, f.world.loadCount())

	// Packing finishes: the waiting truck is picked up, skipping packed
	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))

	shipment, err = f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusLoading, shipment.Status)
	require.NotNil(t, shipment.TruckID)
	assert.Equal(t, int64(7), *shipment.TruckID)

	// The carrier is never told packed; its truck is already there
	assert.Empty(t, f.carrier.packedNos())
	require.Eventually(t, func() bool { return f.world.loadCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestHandleTruckArrived_UnknownShipment(t *testing.T) {
	f := newFixture(t)

	err := f.service.HandleTruckArrived(context.Background(), 999, 1)
	assert.Error(t, err)
}

func TestHandlePackageLoaded(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandleTruckArrived(ctx, resp.ShipmentNo, 55))
	require.NoError(t, f.service.HandlePackageLoaded(ctx, resp.ShipmentNo))

	shipment, err := f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusLoaded, shipment.Status)

	f.carrier.mu.Lock()
	defer f.carrier.mu.Unlock()
	require.Len(t, f.carrier.loaded, 1)
	assert.Equal(t, loadCall{truckID: 55, shipmentID: resp.ShipmentNo}, f.carrier.loaded[0])
}

func TestDeliveryLifecycle_FulfillsOrder(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandleTruckArrived(ctx, resp.ShipmentNo, 55))
	require.NoError(t, f.service.HandlePackageLoaded(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandleStatusUpdate(ctx, resp.ShipmentNo, "delivering"))
	require.NoError(t, f.service.HandleDelivered(ctx, resp.ShipmentNo))

	shipment, err := f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	assert.True(t, shipment.IsDelivered())

	order, err := f.orderRepo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.True(t, order.IsFulfilled())
	for _, item := range order.Items {
		assert.NotNil(t, item.FulfilledAt)
	}
}

func TestHandleDelivered_SkipsDeliveringWhenUpdateLost(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandleTruckArrived(ctx, resp.ShipmentNo, 55))
	require.NoError(t, f.service.HandlePackageLoaded(ctx, resp.ShipmentNo))

	// The delivering update was lost; delivered straight from loaded
	require.NoError(t, f.service.HandleDelivered(ctx, resp.ShipmentNo))

	shipment, err := f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	assert.True(t, shipment.IsDelivered())

	// Redelivered webhook is a no-op
	require.NoError(t, f.service.HandleDelivered(ctx, resp.ShipmentNo))
}

// unreliableOrders copies aggregates on read and write, like the gorm
// repositories do, and can fail the next Update once.
type unreliableOrders struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*fulfillment.Order
	failNext bool
}

func cloneOrder(order *fulfillment.Order) *fulfillment.Order {
	clone := *order
	clone.Items = append([]fulfillment.OrderItem(nil), order.Items...)
	return &clone
}

func (m *unreliableOrders) Save(_ context.Context, order *fulfillment.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[order.ID] = cloneOrder(order)
	return nil
}

func (m *unreliableOrders) Update(_ context.Context, order *fulfillment.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("connection reset by peer")
	}
	if _, ok := m.byID[order.ID]; !ok {
		return shared.ErrNotFound
	}
	m.byID[order.ID] = cloneOrder(order)
	return nil
}

func (m *unreliableOrders) FindByID(_ context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneOrder(order), nil
}

func TestHandleDelivered_OrderWriteFailsThenRedelivered(t *testing.T) {
	shipments := newMemShipments()
	orders := &unreliableOrders{byID: make(map[uuid.UUID]*fulfillment.Order)}
	warehouses := newMemWarehouses(1)

	service := NewShipmentService(shipments, orders, warehouses,
		NewNoOpTransactionScope(shipments, orders), zap.NewNop())
	service.SetWorldGateway(&fakeWorld{})
	service.SetCarrierNotifier(&fakeCarrier{})
	orderService := NewOrderService(orders, shipments)

	ctx := context.Background()
	orderResp, err := orderService.CreateOrder(ctx, CreateOrderRequest{
		DestX: 1, DestY: 2,
		Items: []OrderItemRequest{{ProductID: 1, Description: "soap", Quantity: 1}},
	})
	require.NoError(t, err)
	resp, err := service.CreateShipment(ctx, CreateShipmentRequest{OrderID: orderResp.ID, WarehouseID: 1})
	require.NoError(t, err)

	require.NoError(t, service.HandlePackageReady(ctx, resp.ShipmentNo))
	require.NoError(t, service.HandleTruckArrived(ctx, resp.ShipmentNo, 55))
	require.NoError(t, service.HandlePackageLoaded(ctx, resp.ShipmentNo))

	// The order write fails after the shipment is marked delivered
	orders.failNext = true
	require.Error(t, service.HandleDelivered(ctx, resp.ShipmentNo))

	order, err := orders.FindByID(ctx, orderResp.ID)
	require.NoError(t, err)
	require.False(t, order.IsFulfilled())

	// The carrier redelivers the webhook; the order check must run again
	// even though the shipment is already delivered
	require.NoError(t, service.HandleDelivered(ctx, resp.ShipmentNo))

	order, err = orders.FindByID(ctx, orderResp.ID)
	require.NoError(t, err)
	assert.True(t, order.IsFulfilled())
}

func TestHandleStatusUpdate_Unknown(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)

	err := f.service.HandleStatusUpdate(context.Background(), resp.ShipmentNo, "teleporting")

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNKNOWN_STATUS", domainErr.Code)
}

func TestHandleTrackingAssigned(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandleTrackingAssigned(ctx, resp.ShipmentNo, "TRK-0042"))

	shipment, err := f.shipments.FindByNo(ctx, resp.ShipmentNo)
	require.NoError(t, err)
	require.NotNil(t, shipment.TrackingID)
	assert.Equal(t, "TRK-0042", *shipment.TrackingID)
}

func TestHandleGoodsArrived(t *testing.T) {
	f := newFixture(t)

	err := f.service.HandleGoodsArrived(context.Background(), 1, []worldwire.Item{
		{ID: 5, Description: "soap", Count: 10},
		{ID: 6, Description: "towel", Count: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), f.warehouses.stockOf(1, 5))
	assert.Equal(t, int64(3), f.warehouses.stockOf(1, 6))
}

func TestPurchaseStock(t *testing.T) {
	f := newFixture(t)

	seq, err := f.service.PurchaseStock(context.Background(), PurchaseStockRequest{
		WarehouseID: 1,
		ProductID:   5,
		Description: "soap",
		Quantity:    10,
	})

	require.NoError(t, err)
	assert.Positive(t, seq)

	f.world.mu.Lock()
	defer f.world.mu.Unlock()
	require.Len(t, f.world.purchases, 1)
	assert.Equal(t, int64(5), f.world.purchases[0].ProductID)
}

func TestPurchaseStock_UnknownWarehouse(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.PurchaseStock(context.Background(), PurchaseStockRequest{
		WarehouseID: 99,
		ProductID:   5,
		Quantity:    1,
	})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNKNOWN_WAREHOUSE", domainErr.Code)
}

func TestUpdateDestination(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	updated, err := f.service.UpdateDestination(ctx, resp.ShipmentNo, UpdateDestinationRequest{DestX: -3, DestY: 44})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), updated.DestX)
	assert.Equal(t, int64(44), updated.DestY)
}

func TestUpdateDestination_LockedOnceDelivering(t *testing.T) {
	f := newFixture(t)
	resp := f.createShipment(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandlePackageReady(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandleTruckArrived(ctx, resp.ShipmentNo, 55))
	require.NoError(t, f.service.HandlePackageLoaded(ctx, resp.ShipmentNo))
	require.NoError(t, f.service.HandleStatusUpdate(ctx, resp.ShipmentNo, "delivering"))

	_, err := f.service.UpdateDestination(ctx, resp.ShipmentNo, UpdateDestinationRequest{DestX: 1, DestY: 1})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ADDRESS_LOCKED", domainErr.Code)
}
