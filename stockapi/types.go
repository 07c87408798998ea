package stockapi

import "github.com/shopspring/decimal"

// Batch query types
const (
	QueryLatest  = "latest"
	QueryHistory = "history"
)

// DataPoint is one trading day.
type DataPoint struct {
	Date         string          `json:"date"`
	Open         decimal.Decimal `json:"open"`
	High         decimal.Decimal `json:"high"`
	Low          decimal.Decimal `json:"low"`
	Close        decimal.Decimal `json:"close"`
	Volume       decimal.Decimal `json:"volume"`
	Amount       decimal.Decimal `json:"amount"`
	PctChange    decimal.Decimal `json:"pct_change"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
	TurnoverRate decimal.Decimal `json:"turnover_rate"`
}

type HistoryResponse struct {
	StockCode  string      `json:"stock_code"`
	StockName  string      `json:"stock_name,omitempty"`
	Count      int         `json:"count"`
	StartDate  string      `json:"start_date,omitempty"`
	EndDate    string      `json:"end_date,omitempty"`
	Data       []DataPoint `json:"data"`
	FetchTime  string      `json:"fetch_time,omitempty"`
	DataSource string      `json:"data_source,omitempty"`
}

type LatestResponse struct {
	StockCode              string          `json:"stock_code"`
	StockName              string          `json:"stock_name,omitempty"`
	TradeDate              string          `json:"trade_date"`
	Open                   decimal.Decimal `json:"open"`
	High                   decimal.Decimal `json:"high"`
	Low                    decimal.Decimal `json:"low"`
	Close                  decimal.Decimal `json:"close"`
	PreClose               decimal.Decimal `json:"pre_close"`
	Volume                 decimal.Decimal `json:"volume"`
	Amount                 decimal.Decimal `json:"amount"`
	PctChange              decimal.Decimal `json:"pct_change"`
	ChangeAmount           decimal.Decimal `json:"change_amount"`
	TurnoverRate           decimal.Decimal `json:"turnover_rate"`
	PeTTM                  decimal.Decimal `json:"pe_ttm"`
	PbRatio                decimal.Decimal `json:"pb_ratio"`
	TotalMarketValue       decimal.Decimal `json:"total_market_value"`
	CirculationMarketValue decimal.Decimal `json:"circulation_market_value"`
	FetchTime              string          `json:"fetch_time,omitempty"`
	DataSource             string          `json:"data_source,omitempty"`
}

type InfoResponse struct {
	StockCode  string `json:"stock_code"`
	StockName  string `json:"stock_name"`
	MarketType string `json:"market_type"`
	Industry   string `json:"industry"`
	ListDate   string `json:"list_date"`
	Valid      bool   `json:"valid"`
	Timestamp  string `json:"timestamp,omitempty"`
}

type ReturnResponse struct {
	StockCode        string          `json:"stock_code"`
	Days             int             `json:"days"`
	ReturnRate       decimal.Decimal `json:"return_rate"`
	DataCount        int             `json:"data_count"`
	AnnualizedReturn decimal.Decimal `json:"annualized_return"`
	Timestamp        string          `json:"timestamp,omitempty"`
}

type BatchRequest struct {
	StockCodes []string `json:"stockCodes"`
	QueryType  string   `json:"queryType"`
	Days       int      `json:"days"`
}

type BatchResponse struct {
	QueryType      string                     `json:"query_type"`
	SuccessCount   int                        `json:"success_count"`
	FailedCount    int                        `json:"failed_count"`
	TotalCount     int                        `json:"total_count"`
	LatestData     map[string]LatestResponse  `json:"latest_data,omitempty"`
	HistoryData    map[string]HistoryResponse `json:"history_data,omitempty"`
	FailedStocks   map[string]string          `json:"failed_stocks,omitempty"`
	QueryTime      string                     `json:"query_time,omitempty"`
	ResponseTimeMs int64                      `json:"response_time_ms,omitempty"`
}
