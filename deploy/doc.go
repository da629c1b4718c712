/*
Package deploy provides deployment of the Soulbound ledger onto a host
storage.
*/
package deploy
