package handler

import (
	"errors"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// tickerPattern covers exchange suffixes (0700.HK), share classes (BRK-B),
// indices (^GSPC) and FX pairs (AUDUSD=X). The ticker ends up in a URL path.
var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9.^=-]{1,16}$`)

var registerOnce sync.Once

// RegisterValidators adds the `ticker` binding tag to gin's validator.
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
				return tickerPattern.MatchString(fl.Field().String())
			})
		}
	})
}

const (
	msgTickerRequired = "Ticker is required in the request body"
	msgTickerInvalid  = "Ticker must be 1-16 characters of letters, digits, '.', '-', '^' or '='"
)

// bindErrorMessage maps a ShouldBindJSON failure to the client message.
// Only a ticker that is present but malformed gets the format message;
// everything else (missing field, empty body, bad JSON) is "required".
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "ticker" {
				return msgTickerInvalid
			}
		}
	}
	return msgTickerRequired
}
