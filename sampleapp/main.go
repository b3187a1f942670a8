package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/anirudhraja/protokit"
	"github.com/anirudhraja/protokit/wire"
)

func main() {
	fmt.Println("🚀 Protokit Sample App - hand-written messages, no generated code")
	fmt.Println(strings.Repeat("=", 70))

	demonstrateNullableFields()

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("📋 Complete User Demo:")
	fmt.Println(strings.Repeat("=", 70))

	nickname := "JohnnyDev"
	age := uint32(29)
	user := User{
		ID:     1,
		Name:   "John Doe",
		Status: UserStatusActive,
		Address: &Address{
			Street:  "123 Main St",
			City:    "Springfield",
			Country: "US",
			Lat:     39.7817,
			Lng:     -89.6501,
		},
		Posts: []*Post{
			{ID: 10, Title: "Hello, protobuf", Likes: 42, Tags: []string{"go", "protobuf"}},
			{ID: 11, Title: strings.Repeat("A long title ", 12), Likes: 7},
		},
		Scores:   []int64{100, -5, 12345678},
		Nickname: &nickname,
		Age:      &age,
		Verified: true,
	}

	encoded, err := protokit.Encode(&user)
	if err != nil {
		log.Fatalf("Failed to encode user: %v", err)
	}
	fmt.Printf("\n📦 Encoded user data: %d bytes\n", len(encoded))

	decoded, err := protokit.DecodeAs[User](encoded)
	if err != nil {
		log.Fatalf("Failed to decode user: %v", err)
	}

	fmt.Println("\n✅ Successfully encoded and decoded user data!")
	fmt.Printf("👤 User: %s (ID: %d, %s)\n", decoded.Name, decoded.ID, decoded.Status)
	fmt.Printf("🏠 Address: %s, %s, %s (%.4f, %.4f)\n",
		decoded.Address.Street, decoded.Address.City, decoded.Address.Country,
		decoded.Address.Lat, decoded.Address.Lng)
	fmt.Printf("📝 Posts: %d\n", len(decoded.Posts))
	for _, p := range decoded.Posts {
		fmt.Printf("   #%d %q likes=%d tags=%v\n", p.ID, strings.TrimSpace(p.Title), p.Likes, p.Tags)
	}
	fmt.Printf("📊 Scores: %v\n", decoded.Scores)

	fmt.Println("\n🔎 Raw field view:")
	fields, err := wire.ParseRaw(encoded)
	if err != nil {
		log.Fatalf("Failed to walk encoded user: %v", err)
	}
	for _, f := range fields {
		fmt.Printf("   %s\n", f)
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("🎉 Scalars, enums, nested and repeated messages, packed fields, nullable wrappers")
	fmt.Println(strings.Repeat("=", 70))
}

func demonstrateNullableFields() {
	fmt.Println("\n🎯 Nullable Fields Demo - absent vs zero")
	fmt.Println(strings.Repeat("-", 60))

	zero := uint32(0)
	users := []struct {
		label string
		user  User
	}{
		{"1️⃣ User with age known to be 0:", User{ID: 2, Name: "Baby", Age: &zero}},
		{"2️⃣ User with age not set:", User{ID: 3, Name: "Mystery"}},
	}

	for _, u := range users {
		fmt.Println("\n" + u.label)
		encoded, err := protokit.Encode(&u.user)
		if err != nil {
			log.Fatalf("Failed to encode %s: %v", u.user.Name, err)
		}
		var decoded User
		if err := protokit.Decode(encoded, &decoded); err != nil {
			log.Fatalf("Failed to decode %s: %v", u.user.Name, err)
		}
		fmt.Printf("   📦 Encoded: %d bytes\n", len(encoded))
		if decoded.Age != nil {
			fmt.Printf("   🎂 Age: %d\n", *decoded.Age)
		} else {
			fmt.Println("   🎂 Age: <nil> (not set)")
		}
	}
}
