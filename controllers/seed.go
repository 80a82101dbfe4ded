package controllers

import (
	"errors"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
)

// CreateDefaultAdmin creates the bootstrap admin account from ADMIN_EMAIL /
// ADMIN_PASSWORD when it does not exist yet.
func CreateDefaultAdmin() error {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		utils.LogInfo("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	if _, err := store.GetAdminByEmail(appCfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(appCfg.AdminPassword)
	if err != nil {
		return err
	}
	if err := store.CreateAdmin(&models.Admin{Email: appCfg.AdminEmail, Password: hash}); err != nil {
		return err
	}
	utils.LogInfo("Default admin created: %s", appCfg.AdminEmail)
	return nil
}

// SeedProducts populates the starter catalog when the products table is
// empty.
func SeedProducts() error {
	existing, err := store.GetAllProducts()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, product := range starterCatalog {
		p := product
		if err := store.CreateProduct(&p); err != nil {
			return err
		}
	}
	utils.LogInfo("Seeded %d starter products", len(starterCatalog))
	return nil
}

var starterCatalog = []models.Product{
	{
		Name:        "Heritage Cashmere Overcoat",
		Description: "An impeccably crafted overcoat in the finest Italian cashmere. Features a timeless silhouette with peak lapels, hand-stitched details, and a luxurious drape that commands attention.",
		Price:       "2499.00",
		Category:    "Outerwear",
		Image:       "/assets/products/black-cashmere-overcoat.png",
		Stock:       8,
	},
	{
		Name:        "Pure Silk Dress Shirt",
		Description: "Crafted from 100% mulberry silk with mother-of-pearl buttons, French cuffs, and a tailored fit. Transitions seamlessly from boardroom to evening events.",
		Price:       "495.00",
		Category:    "Shirts",
		Image:       "/assets/products/white-silk-dress-shirt.png",
		Stock:       15,
	},
	{
		Name:        "Tailored Wool Blazer",
		Description: "A masterpiece of tailoring in premium charcoal wool with hand-padded shoulders, working cuff buttons, and a half-canvas construction.",
		Price:       "1899.00",
		Category:    "Outerwear",
		Image:       "/assets/products/charcoal-wool-blazer.png",
		Stock:       10,
	},
	{
		Name:        "Oxford Leather Dress Shoes",
		Description: "Handcrafted in Italy from the finest calfskin leather with Goodyear welt construction, leather soles, and subtle gold accents.",
		Price:       "899.00",
		Category:    "Footwear",
		Image:       "/assets/products/black-leather-oxfords.png",
		Stock:       12,
	},
	{
		Name:        "Prestige Gold Timepiece",
		Description: "An exquisite automatic watch featuring a 42mm gold-plated case, sapphire crystal, and genuine leather strap.",
		Price:       "3499.00",
		Category:    "Accessories",
		Image:       "/assets/products/gold-wristwatch.png",
		Stock:       5,
	},
	{
		Name:        "Merino Wool Turtleneck",
		Description: "Luxurious softness in a navy turtleneck knitted from superfine merino wool. The perfect layering piece for effortlessly elegant looks.",
		Price:       "425.00",
		Category:    "Knitwear",
		Image:       "/assets/products/navy-merino-turtleneck.png",
		Stock:       20,
	},
	{
		Name:        "Tailored Dress Trousers",
		Description: "Impeccably tailored trousers in premium Italian wool with a slim fit, side adjusters, and hand-finished details.",
		Price:       "595.00",
		Category:    "Trousers",
		Image:       "/assets/products/black-tailored-trousers.png",
		Stock:       18,
	},
}
