package controllers

import (
	"github.com/atlanticweizard/storefront/config"
	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/payu"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
)

// Notifier delivers the post-payment confirmation to the customer. It runs
// fire-and-forget relative to the callback response.
type Notifier func(order *models.Order) error

var (
	store   storage.Storage
	gateway *payu.Service
	appCfg  *config.Config
	notify  Notifier
)

// Init wires the controllers' collaborators. A nil gateway is accepted so
// that a misconfigured deployment still serves the catalog; checkout then
// reports the operator error. A nil notifier defaults to the confirmation
// email.
func Init(s storage.Storage, g *payu.Service, cfg *config.Config, n Notifier) {
	store = s
	gateway = g
	appCfg = cfg
	notify = n
	if notify == nil {
		notify = utils.SendPaymentSuccessEmail
	}
}
