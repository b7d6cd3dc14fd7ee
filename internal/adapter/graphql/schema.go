package graphql

// Schema is the SDL served at /graphql.
const Schema = `
schema {
	query: Query
	mutation: Mutation
}

enum ListingType {
	APARTMENT
	HOUSE
}

enum ListingsFilter {
	PRICE_LOW_TO_HIGH
	PRICE_HIGH_TO_LOW
}

type User {
	id: ID!
	name: String!
	avatar: String!
	contact: String!
}

type Booking {
	id: ID!
	tenant: User!
	checkIn: String!
	checkOut: String!
}

type Bookings {
	total: Int!
	result: [Booking!]!
}

type Listing {
	id: ID!
	title: String!
	description: String!
	image: String!
	host: User!
	type: ListingType!
	address: String!
	country: String!
	admin: String!
	city: String!
	# null unless the viewer hosts this listing
	bookings(limit: Int!, page: Int!): Bookings
	bookingsIndex: String!
	price: Int!
	numOfGuests: Int!
}

type Listings {
	region: String
	total: Int!
	result: [Listing!]!
}

type CityAdmin {
	admin: String!
	city: String!
}

type CityAndAdminResults {
	total: Int!
	result: [CityAdmin!]!
}

union AutoCompleteResult = Listings | CityAndAdminResults

input HostListingInput {
	title: String!
	description: String!
	image: String!
	type: ListingType!
	address: String!
	price: Int!
	numOfGuests: Int!
}

type Query {
	autoCompleteOptions(text: String!): AutoCompleteResult!
	listing(id: ID!): Listing!
	listings(location: String, filter: ListingsFilter, limit: Int!, page: Int!): Listings!
}

type Mutation {
	hostListing(input: HostListingInput!): Listing!
}
`
