package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderRepository implements domain.OrderRepository
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new order repository
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	objID := primitive.NewObjectID()
	order.ID = objID.Hex()

	items := make([]bson.M, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDoc(item))
	}

	doc := bson.M{
		"_id":              objID,
		"user_id":          order.UserID,
		"items":            items,
		"price":            order.Price,
		"discount_amount":  order.DiscountAmount,
		"pro_rata_credit":  order.ProRataCredit,
		"total_amount":     order.TotalAmount,
		"status":           order.Status,
		"type":             order.Type,
		"payment_status":   order.PaymentStatus,
		"cancellation_fee": order.CancellationFee,
		"refund_amount":    order.RefundAmount,
		"created_at":       order.CreatedAt,
		"updated_at":       order.UpdatedAt,
	}
	if order.PaymentID != "" {
		doc["payment_id"] = order.PaymentID
	}
	if order.GatewayOrderID != "" {
		doc["gateway_order_id"] = order.GatewayOrderID
	}
	if order.SubscriptionID != "" {
		doc["subscription_id"] = order.SubscriptionID
	}
	if order.DeliveryAddress != nil {
		doc["delivery_address"] = addressDoc(order.DeliveryAddress)
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return mapBsonToOrder(raw), nil
}

func (r *MongoOrderRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by user: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeOrders(ctx, cursor)
}

func (r *MongoOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	objID, err := primitive.ObjectIDFromHex(order.ID)
	if err != nil {
		return fmt.Errorf("invalid order id: %w", err)
	}

	order.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"status":           order.Status,
		"payment_status":   order.PaymentStatus,
		"cancellation_fee": order.CancellationFee,
		"refund_amount":    order.RefundAmount,
		"updated_at":       order.UpdatedAt,
	}
	if order.PaymentID != "" {
		set["payment_id"] = order.PaymentID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid order id: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoOrderRepository) MarkBySubscription(ctx context.Context, subscriptionID, status string) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}

	_, err := r.collection.UpdateMany(ctx, bson.M{"subscription_id": subscriptionID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark orders by subscription: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) GetForDeliveryDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Order, error) {
	filter := bson.M{
		"status":         domain.OrderStatusConfirmed,
		"payment_status": domain.PaymentStatusPaid,
		"type":           bson.M{"$in": []string{domain.OrderTypeSingle, domain.OrderTypeEvent}},
		"items.delivery_date": bson.M{
			"$gte": dayStart,
			"$lte": dayEnd,
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery-day orders: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeOrders(ctx, cursor)
}

func (r *MongoOrderRepository) List(ctx context.Context, status string) ([]*domain.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeOrders(ctx, cursor)
}

func decodeOrders(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Order, error) {
	var orders []*domain.Order
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		orders = append(orders, mapBsonToOrder(raw))
	}
	return orders, nil
}

func orderItemDoc(item domain.OrderItem) bson.M {
	doc := bson.M{
		"name":       item.Name,
		"quantity":   item.Quantity,
		"unit_price": item.UnitPrice,
	}
	if item.PlanType != "" {
		doc["plan_type"] = item.PlanType
	}
	if item.MealTime != "" {
		doc["meal_time"] = item.MealTime
	}
	if !item.DeliveryDate.IsZero() {
		doc["delivery_date"] = item.DeliveryDate
	}
	if item.Detail != nil {
		doc["detail"] = item.Detail
	}
	return doc
}

func mapBsonToOrder(raw bson.M) *domain.Order {
	order := &domain.Order{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		order.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		order.UserID = userID
	}
	if items, ok := raw["items"].(bson.A); ok {
		for _, entry := range items {
			if doc, ok := entry.(bson.M); ok {
				order.Items = append(order.Items, mapBsonToOrderItem(doc))
			}
		}
	}
	order.Price = asFloat(raw["price"])
	order.DiscountAmount = asFloat(raw["discount_amount"])
	order.ProRataCredit = asFloat(raw["pro_rata_credit"])
	order.TotalAmount = asFloat(raw["total_amount"])
	if status, ok := raw["status"].(string); ok {
		order.Status = status
	}
	if orderType, ok := raw["type"].(string); ok {
		order.Type = orderType
	}
	if paymentStatus, ok := raw["payment_status"].(string); ok {
		order.PaymentStatus = paymentStatus
	}
	if paymentID, ok := raw["payment_id"].(string); ok {
		order.PaymentID = paymentID
	}
	if gatewayOrderID, ok := raw["gateway_order_id"].(string); ok {
		order.GatewayOrderID = gatewayOrderID
	}
	if subscriptionID, ok := raw["subscription_id"].(string); ok {
		order.SubscriptionID = subscriptionID
	}
	order.DeliveryAddress = mapBsonToAddress(raw["delivery_address"])
	order.CancellationFee = asFloat(raw["cancellation_fee"])
	order.RefundAmount = asFloat(raw["refund_amount"])
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		order.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		order.UpdatedAt = updated.Time()
	}

	return order
}

func mapBsonToOrderItem(doc bson.M) domain.OrderItem {
	item := domain.OrderItem{}

	if name, ok := doc["name"].(string); ok {
		item.Name = name
	}
	switch qty := doc["quantity"].(type) {
	case int32:
		item.Quantity = int(qty)
	case int64:
		item.Quantity = int(qty)
	case float64:
		item.Quantity = int(qty)
	}
	item.UnitPrice = asFloat(doc["unit_price"])
	if planType, ok := doc["plan_type"].(string); ok {
		item.PlanType = planType
	}
	if mealTime, ok := doc["meal_time"].(string); ok {
		item.MealTime = mealTime
	}
	if deliveryDate, ok := doc["delivery_date"].(primitive.DateTime); ok {
		item.DeliveryDate = deliveryDate.Time()
	}
	if detail, ok := doc["detail"]; ok {
		item.Detail = normalizeBsonValue(detail)
	}

	return item
}

// normalizeBsonValue converts driver container types into plain Go containers
// so the dispatch aggregator can type-switch on []interface{} and
// map[string]interface{} without knowing about bson.
func normalizeBsonValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.A:
		out := make([]interface{}, 0, len(val))
		for _, entry := range val {
			out = append(out, normalizeBsonValue(entry))
		}
		return out
	case bson.M:
		out := make(map[string]interface{}, len(val))
		for k, entry := range val {
			out[k] = normalizeBsonValue(entry)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(val))
		for _, elem := range val {
			out[elem.Key] = normalizeBsonValue(elem.Value)
		}
		return out
	}
	return v
}
