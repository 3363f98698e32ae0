// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// This file provides registries for VM and Processor factories.
//
// The registries are intended to be used by all client applications that
// would like to execute transactions. For an implementation to be available
// it needs to be registered. Typically, this registration is part of the
// init code of the package providing an implementation. Thus, by including
// the implementation package, implementations become available in these
// central registries.

// VMFactory is the type of a function that creates a new VM using a VM
// specific configuration.
type VMFactory func(config any) (VM, error)

// NewVM performs a lookup for the given name (case-insensitive) in the
// registry and creates a new VM using the given optional configuration. If
// no configuration is provided, the implementation uses its default
// configuration. An error is returned if no factory was registered under
// the given name.
func NewVM(name string, config ...any) (VM, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: too many arguments")
	}
	factory := GetVMFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("vm not found: %s", name)
	}
	c := any(nil)
	if len(config) > 0 {
		c = config[0]
	}
	return factory(c)
}

// GetVMFactory performs a lookup for the given name (case-insensitive) in
// the registry. The result is nil if no factory was registered under the
// given name.
func GetVMFactory(name string) VMFactory {
	vmRegistryLock.Lock()
	defer vmRegistryLock.Unlock()
	return vmRegistry[strings.ToLower(name)]
}

// GetAllRegisteredVMs obtains all registered implementations.
func GetAllRegisteredVMs() map[string]VMFactory {
	vmRegistryLock.Lock()
	defer vmRegistryLock.Unlock()
	return maps.Clone(vmRegistry)
}

// RegisterVMFactory registers a new VM implementation to be exported for
// general use in the binary. The name is not case-sensitive. An error is
// returned if a factory was bound to the same name before, or the factory
// is nil.
func RegisterVMFactory(name string, factory VMFactory) error {
	key := strings.ToLower(name)
	if factory == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-factory using `%s`", key)
	}
	vmRegistryLock.Lock()
	defer vmRegistryLock.Unlock()
	if _, found := vmRegistry[key]; found {
		return fmt.Errorf("invalid initialization: multiple factories registered for `%s`", key)
	}
	vmRegistry[key] = factory
	return nil
}

var vmRegistry = map[string]VMFactory{}
var vmRegistryLock sync.Mutex

// ProcessorFactory is the type of a function that creates a new Processor
// using a given VM.
type ProcessorFactory func(VM) Processor

// GetProcessor performs a lookup for the given name (case-insensitive) and
// creates a processor instance using the given VM. The result is nil if no
// factory was registered under the given name.
func GetProcessor(name string, vm VM) Processor {
	factory := GetProcessorFactory(name)
	if factory == nil {
		return nil
	}
	return factory(vm)
}

// GetProcessorFactory performs a lookup for the given name
// (case-insensitive) in the registry. The result is nil if no factory was
// registered under the given name.
func GetProcessorFactory(name string) ProcessorFactory {
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	return processorRegistry[strings.ToLower(name)]
}

// GetAllRegisteredProcessorFactories obtains all registered implementations.
func GetAllRegisteredProcessorFactories() map[string]ProcessorFactory {
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	return maps.Clone(processorRegistry)
}

// RegisterProcessorFactory can be used to register a new Processor
// implementation. The name is not case-sensitive, and a panic is triggered
// if an implementation was bound to the same name before, or the
// implementation is nil. This function is mainly intended to be used by
// package initialization code.
func RegisterProcessorFactory(name string, factory ProcessorFactory) {
	key := strings.ToLower(name)
	if factory == nil {
		panic(fmt.Sprintf("invalid initialization: cannot register nil-processor using `%s`", key))
	}
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	if _, found := processorRegistry[key]; found {
		panic(fmt.Sprintf("invalid initialization: multiple processors registered for `%s`", key))
	}
	processorRegistry[key] = factory
}

var processorRegistry = map[string]ProcessorFactory{}
var processorRegistryLock sync.Mutex
