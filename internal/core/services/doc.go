// Package services contains the application services implementing the
// driving ports. Services orchestrate domain logic and depend only on
// driven port interfaces, never on concrete adapters.
package services
