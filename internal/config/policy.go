package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PermitPolicy carries the operator-tunable pricing and limit constants.
// These are policy, not data: they apply uniformly across zones and are not
// derived from products.
type PermitPolicy struct {
	// Multiplier applied to the unit price of a secondary-vehicle permit.
	SecondaryVehicleMultiplier float64 `mapstructure:"secondaryVehicleMultiplier"`
	// Maximum number of concurrently active permits a customer may hold.
	MaxActivePermits int `mapstructure:"maxActivePermits"`
}

func DefaultPermitPolicy() PermitPolicy {
	return PermitPolicy{
		SecondaryVehicleMultiplier: 1.5,
		MaxActivePermits:           2,
	}
}

type PolicyHolder struct {
	current atomic.Value // holds PermitPolicy
}

// NewPolicyHolder reads policy.yml when present and watches it for changes.
// Missing file falls back to defaults so local and test runs need no setup.
func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("policy")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/parking-permits")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PERMITS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PolicyHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultPermitPolicy())
		return holder, nil
	}

	var policy PermitPolicy
	if err := v.UnmarshalKey("permits", &policy); err != nil {
		return nil, err
	}
	if err := validatePermitPolicy(policy); err != nil {
		return nil, err
	}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PermitPolicy
		if err := v.UnmarshalKey("permits", &updated); err != nil {
			log.Printf("[permit-policy] reload failed: %v", err)
			return
		}
		if err := validatePermitPolicy(updated); err != nil {
			log.Printf("[permit-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[permit-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPolicyHolder wraps a fixed policy, used by tests.
func NewStaticPolicyHolder(policy PermitPolicy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *PolicyHolder) Get() PermitPolicy {
	return h.current.Load().(PermitPolicy)
}

func validatePermitPolicy(policy PermitPolicy) error {
	if policy.SecondaryVehicleMultiplier <= 0 {
		return errors.New("permits.secondaryVehicleMultiplier must be positive")
	}
	if policy.MaxActivePermits < 1 {
		return errors.New("permits.maxActivePermits must be at least 1")
	}
	return nil
}
