package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Marketplace
	&User{},
	&Category{},
	&Product{},
	&Message{},
	&PaymentOrder{},
}
