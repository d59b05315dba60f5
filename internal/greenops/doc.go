// Package greenops turns kg CO2e into relatable equivalents such as
// kilometres driven or smartphones charged, using the factors published by
// the EPA Greenhouse Gas Equivalencies Calculator.
package greenops
