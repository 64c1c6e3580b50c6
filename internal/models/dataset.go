package models

// Dataset is the full set of maintenance records the dashboard works on.
type Dataset struct {
	Assets           []Asset           `json:"assets" bson:"assets"`
	Failures         []Failure         `json:"failures" bson:"failures"`
	WorkOrders       []WorkOrder       `json:"work_orders" bson:"work_orders"`
	MaintenanceCosts []MaintenanceCost `json:"maintenance_costs" bson:"maintenance_costs"`
}

// DatasetCounts holds record counts per collection.
type DatasetCounts struct {
	Assets           int `json:"assets"`
	Failures         int `json:"failures"`
	WorkOrders       int `json:"work_orders"`
	MaintenanceCosts int `json:"maintenance_costs"`
}

// Counts returns the number of records in each collection.
func (d Dataset) Counts() DatasetCounts {
	return DatasetCounts{
		Assets:           len(d.Assets),
		Failures:         len(d.Failures),
		WorkOrders:       len(d.WorkOrders),
		MaintenanceCosts: len(d.MaintenanceCosts),
	}
}

// AssetIndex maps AssetID to asset.
func (d Dataset) AssetIndex() map[string]Asset {
	idx := make(map[string]Asset, len(d.Assets))
	for _, a := range d.Assets {
		idx[a.AssetID] = a
	}
	return idx
}

// IsEmpty reports whether the dataset holds no records at all.
func (d Dataset) IsEmpty() bool {
	return len(d.Assets) == 0 && len(d.Failures) == 0 && len(d.WorkOrders) == 0 && len(d.MaintenanceCosts) == 0
}
