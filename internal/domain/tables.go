package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOprLog{},
	&SysScheduler{},
	// Shop
	&User{},
	&Product{},
	&Order{},
	&OrderItem{},
	&BehaviorSample{},
}
