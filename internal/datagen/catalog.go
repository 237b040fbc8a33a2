package datagen

// Country is a country and the sales region it belongs to.
type Country struct {
	Name   string
	Region string
}

// Product is an entry of the sample product catalogue. Each name has one
// category and one price.
type Product struct {
	Name     string
	Category string
	Price    string
}

// Countries is the fixed geography used for generated customers.
var Countries = []Country{
	{"USA", "North America"},
	{"Canada", "North America"},
	{"Mexico", "North America"},
	{"UK", "Europe"},
	{"France", "Europe"},
	{"Germany", "Europe"},
	{"Spain", "Europe"},
	{"Japan", "Asia"},
	{"India", "Asia"},
	{"Singapore", "Asia"},
	{"Brazil", "South America"},
	{"Argentina", "South America"},
	{"Australia", "Oceania"},
}

// countryWeights skews customers towards the larger markets.
var countryWeights = []int{8, 3, 2, 4, 3, 3, 2, 3, 2, 1, 2, 1, 2}

// Products is the fixed sample catalogue.
var Products = []Product{
	{"Laptop Pro 14", "Electronics", "1299.00"},
	{"Wireless Mouse", "Electronics", "24.99"},
	{"USB-C Hub", "Electronics", "49.50"},
	{"Noise Cancelling Headphones", "Electronics", "199.99"},
	{"Office Chair", "Furniture", "249.00"},
	{"Standing Desk", "Furniture", "499.00"},
	{"Bookshelf", "Furniture", "89.90"},
	{"Espresso Maker", "Kitchen", "149.00"},
	{"Chef Knife", "Kitchen", "59.95"},
	{"Cast Iron Pan", "Kitchen", "39.00"},
	{"Running Shoes", "Apparel", "119.00"},
	{"Rain Jacket", "Apparel", "89.00"},
	{"Wool Socks", "Apparel", "12.50"},
	{"Notebook A5", "Stationery", "4.75"},
	{"Fountain Pen", "Stationery", "35.00"},
}
