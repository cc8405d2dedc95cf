/*
Package custody defines the common interfaces that tie the custodian
together: the key-value storage abstraction, the Handler/Decorator
processing stack, transactions and messages, and the Condition/Address
credential scheme that gives the custodian temporary, secretless
control over a seller's vault.

The business logic lives in the extensions under x/, most importantly
x/escrow which implements the open/settle/cancel lifecycle of a
collectible sale.
*/
package custody
