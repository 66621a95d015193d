package chain

// Only the read methods this service calls.
const (
	nftABIJSON = `[
	{"type":"function","name":"tokenURI","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

	registryABIJSON = `[
	{"type":"function","name":"account","stateMutability":"view",
	 "inputs":[
	  {"name":"implementation","type":"address"},
	  {"name":"chainId","type":"uint256"},
	  {"name":"tokenContract","type":"address"},
	  {"name":"tokenId","type":"uint256"},
	  {"name":"salt","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]}
]`
)

const (
	FuncTokenURI = "tokenURI"
	FuncOwnerOf  = "ownerOf"
	FuncAccount  = "account"
)
