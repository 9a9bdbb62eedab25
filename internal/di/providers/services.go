package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/seriesd/internal/byline"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/metrics"
	"github.com/listenupapp/seriesd/internal/service"
	"github.com/listenupapp/seriesd/internal/validation"
)

// ProvideBylineParser provides the byline parser backed by the store.
func ProvideBylineParser(i do.Injector) (*byline.Parser, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return byline.New(storeHandle.Store), nil
}

// ProvideValidator provides the input validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSeriesService provides the series service.
func ProvideSeriesService(i do.Injector) (*service.SeriesService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	parser := do.MustInvoke[*byline.Parser](i)
	v := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSeriesService(storeHandle.Store, parser, v, m, log), nil
}
