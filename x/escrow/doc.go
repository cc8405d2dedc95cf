/*
Package escrow implements the custodian's trade lifecycle for a single
unique collectible.

A seller opens an offer: the collectible moves into a vault whose
authority becomes a capability derived from fixed seed material and
the seller identity, so neither party can touch the asset while the
offer is open. A buyer settles the offer by paying the exact ask
price, which is split between seller and marketplace, or the seller
cancels and takes the collectible back. Both terminal paths
decommission the vault and the offer record and refund the storage
deposits to the seller.

Every operation validates all its preconditions before the first
mutation and runs under a store savepoint, so a failure at any step
leaves no trace.
*/
package escrow
