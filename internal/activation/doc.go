// Package activation issues activation codes and drives them through their lifecycle.
//
// A code is minted UNUSED, handed out as DISTRIBUTED and redeemed once as ACTIVATED at
// user registration. Any code can be retired as INVALID, which is terminal. Status
// changes are compare-and-set updates in the repository, so two callers racing on one
// code cannot both win.
package activation
