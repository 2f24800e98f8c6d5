package fakestore

import (
	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/product"
)

// DemoUsername and DemoPassword are the seeded account.
const (
	DemoUsername = "mor_2314"
	DemoPassword = "83r5^_"
)

// Fixtures is the seeded catalog, a subset of the public demo data.
func Fixtures() []product.Product {
	p := func(id int, title, price, category, image, description string, rate float64, count int) product.Product {
		return product.Product{
			ID:          id,
			Title:       title,
			Price:       decimal.RequireFromString(price),
			Category:    category,
			Image:       image,
			Description: description,
			Rating:      &product.Rating{Rate: rate, Count: count},
		}
	}
	return []product.Product{
		p(1, "Fjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops", "109.95", "men's clothing",
			"https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
			"Your perfect pack for everyday use and walks in the forest.", 3.9, 120),
		p(2, "Mens Casual Premium Slim Fit T-Shirts", "22.3", "men's clothing",
			"https://fakestoreapi.com/img/71-3HjGNDUL._AC_SY879._SX._UX._SY._UY_.jpg",
			"Slim-fitting style, contrast raglan long sleeve, three-button henley placket.", 4.1, 259),
		p(3, "Mens Cotton Jacket", "55.99", "men's clothing",
			"https://fakestoreapi.com/img/71li-ujtlUL._AC_UX679_.jpg",
			"Great outerwear jackets for Spring, Autumn and Winter.", 4.7, 500),
		p(5, "John Hardy Women's Legends Naga Gold & Silver Dragon Station Chain Bracelet", "695", "jewelery",
			"https://fakestoreapi.com/img/71pWzhdJNwL._AC_UL640_QL65_ML3_.jpg",
			"From our Legends Collection, the Naga was inspired by the mythical water dragon.", 4.6, 400),
		p(8, "Pierced Owl Rose Gold Plated Stainless Steel Double", "10.99", "jewelery",
			"https://fakestoreapi.com/img/51UDEzMJVpL._AC_UL640_QL65_ML3_.jpg",
			"Rose Gold Plated Double Flared Tunnel Plug Earrings.", 1.9, 100),
		p(9, "WD 2TB Elements Portable External Hard Drive - USB 3.0", "64", "electronics",
			"https://fakestoreapi.com/img/61IBBVJvSDL._AC_SY879_.jpg",
			"USB 3.0 and USB 2.0 compatibility, fast data transfers.", 3.3, 203),
		p(14, "Samsung 49-Inch CHG90 144Hz Curved Gaming Monitor", "999.99", "electronics",
			"https://fakestoreapi.com/img/81Zt42ioCgL._AC_SX679_.jpg",
			"49 inch super ultrawide 32:9 curved gaming monitor.", 2.2, 140),
		p(18, "MBJ Women's Solid Short Sleeve Boat Neck V", "9.85", "women's clothing",
			"https://fakestoreapi.com/img/71z3kpMAYsL._AC_UY879_.jpg",
			"95% rayon, 5% spandex, made in USA or imported.", 4.7, 130),
		p(20, "DANVOUY Womens T Shirt Casual Cotton Short", "12.99", "women's clothing",
			"https://fakestoreapi.com/img/61pHAEJ4NML._AC_UX679_.jpg",
			"95% cotton, 5% spandex, casual short sleeve.", 3.6, 145),
	}
}
