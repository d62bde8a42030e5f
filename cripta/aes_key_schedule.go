package cripta

// Rounds is the number of AES-128 rounds.
const Rounds = 10

// RoundKeys is the expanded key schedule. RoundKeys[0] is the cipher key itself.
type RoundKeys [Rounds + 1]Block

// ExpandKey derives the 11 round keys of AES-128 from key.
func ExpandKey(key Block) RoundKeys {
	var roundKeys RoundKeys
	roundKeys[0] = key

	for round := 1; round <= Rounds; round++ {
		prevKey := &roundKeys[round-1]
		currentKey := &roundKeys[round]

		var temp [4]byte
		copy(temp[:], prevKey[12:16])

		// RotWord
		tempByte := temp[0]
		temp[0] = temp[1]
		temp[1] = temp[2]
		temp[2] = temp[3]
		temp[3] = tempByte

		// SubWord
		for j := range temp {
			temp[j] = sBox[temp[j]]
		}

		temp[0] ^= rcon[round-1]

		for j := 0; j < 4; j++ {
			currentKey[j] = prevKey[j] ^ temp[j]
		}

		// each remaining word chains off the previous word of the new key
		for j := 4; j < BlockSize; j++ {
			currentKey[j] = prevKey[j] ^ currentKey[j-4]
		}
	}

	return roundKeys
}
