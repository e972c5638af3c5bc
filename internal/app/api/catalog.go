package api

import ordersports "github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"

// Demo catalog for local runs. Prices are in minor units.
var (
	demoProducts = []ordersports.Product{
		{ID: 1, Name: "Portland cement 50kg", Price: 65000, Stock: 400, Active: true},
		{ID: 2, Name: "Deformed rebar 10mm x 12m", Price: 85000, Stock: 250, Active: true},
		{ID: 3, Name: "Red clay brick", Price: 900, Stock: 20000, Active: true},
		{ID: 4, Name: "Ceramic floor tile 40x40", Price: 52000, Stock: 120, Active: true},
		{ID: 5, Name: "Asbestos roof sheet", Price: 48000, Stock: 0, Active: false},
	}
	demoServices = []ordersports.ServiceOffering{
		{ID: 101, Name: "Truck delivery within city", Price: 150000, Active: true},
		{ID: 102, Name: "Site unloading crew", Price: 250000, Active: true},
		{ID: 103, Name: "Rebar cutting and bending", Price: 5000, Active: true},
		{ID: 104, Name: "Same-day crane rental", Price: 3500000, Active: false},
	}
)
