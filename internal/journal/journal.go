package journal

import (
	"time"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"

	"slabtrader/internal/portfolio"
	"slabtrader/internal/router"
	"slabtrader/internal/schema"
	"slabtrader/pkg/conn"
)

// RoutePlanRecord is one persisted execution plan.
type RoutePlanRecord struct {
	ID         uint64 `gorm:"primaryKey"`
	CreatedAt  time.Time
	Instrument string
	Side       string
	OrderType  string
	Leverage   uint8
	Legs       int
	Quantity   decimal.Decimal `gorm:"type:text"`
	AvgPrice   decimal.Decimal `gorm:"type:text"`
}

// NettedPositionRecord is one persisted netted-view row.
type NettedPositionRecord struct {
	ID            uint64 `gorm:"primaryKey"`
	CreatedAt     time.Time
	Instrument    string
	NetQuantity   decimal.Decimal `gorm:"type:text"`
	AvgEntryPrice decimal.Decimal `gorm:"type:text"`
	UnrealizedPnl decimal.Decimal `gorm:"type:text"`
	Legs          int
}

// Journal persists route plans and portfolio snapshots to Postgres.
// A nil Journal is a no-op, so callers can leave it unconfigured.
type Journal struct {
	client *conn.Client
}

// Open connects to Postgres and migrates the journal tables.
func Open(dsn string) (*Journal, error) {
	client, err := conn.New(dsn, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open journal db")
	}
	if err := client.DB().AutoMigrate(&RoutePlanRecord{}, &NettedPositionRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate journal tables")
	}
	return &Journal{client: client}, nil
}

// Close releases the connection pool.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.client.Close()
}

// RecordPlan stores an execution plan. The average price is
// quantity-weighted across legs.
func (j *Journal) RecordPlan(instrument string, side schema.Side, orderType schema.OrderType, leverage uint8, plan []router.Fill) error {
	if j == nil || len(plan) == 0 {
		return nil
	}

	var totalQty schema.Quantity
	var notional int64
	for _, f := range plan {
		totalQty += f.Quantity
		notional += int64(f.Quantity) * int64(f.Price) / schema.PriceScale
	}
	avg := schema.Price(0)
	if totalQty > 0 {
		avg = schema.Price(notional * schema.PriceScale / int64(totalQty))
	}

	rec := RoutePlanRecord{
		CreatedAt:  time.Now(),
		Instrument: instrument,
		Side:       side.String(),
		OrderType:  orderType.String(),
		Leverage:   leverage,
		Legs:       len(plan),
		Quantity:   totalQty.Decimal(),
		AvgPrice:   avg.Decimal(),
	}
	if err := j.client.DB().Create(&rec).Error; err != nil {
		return errors.Wrap(err, "insert route plan")
	}
	return nil
}

// RecordNetted stores a netted portfolio view.
func (j *Journal) RecordNetted(netted []portfolio.NettedPosition) error {
	if j == nil || len(netted) == 0 {
		return nil
	}

	now := time.Now()
	recs := make([]NettedPositionRecord, 0, len(netted))
	for _, n := range netted {
		recs = append(recs, NettedPositionRecord{
			CreatedAt:     now,
			Instrument:    n.Instrument.String(),
			NetQuantity:   n.NetQuantity.Decimal(),
			AvgEntryPrice: n.AvgEntryPrice.Decimal(),
			UnrealizedPnl: schema.Quantity(n.UnrealizedPnl).Decimal(),
			Legs:          n.Legs,
		})
	}
	if err := j.client.DB().Create(&recs).Error; err != nil {
		return errors.Wrap(err, "insert netted positions")
	}
	return nil
}
