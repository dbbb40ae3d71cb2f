package mips

// dataPreamble and textPreamble reproduce
// original_source/mips/runtime.py's get_data_preamble/get_text_preamble
// verbatim: the three constant strings every program's .data section
// starts with, and the .text/.globl main/main: header every program's
// code section starts with.
const dataPreamble = `.data
_newline: .asciiz "\n"
_true: .asciiz "true"
_false: .asciiz "false"
`

const textPreamble = `
.text
.globl main

main:
`

// syscallHelpers is the runtime support code every program's assembly
// ends with: _print_int/_print_string/_print_boolean (consumed by PRINT),
// _int_to_string (the toString intrinsic's target), _alloc (NEW),
// _string_concat (string-typed ADD) and _exit.
//
// original_source/mips/runtime.py's get_syscall_helpers() is the nominal
// grounding source for this block, but the retrieved file is truncated —
// its docstring describes returning "a MIPS string block with all the
// syscall helper functions (print, alloc, exit)" and the function body is
// an unterminated `return """` with no string contents following it
// anywhere in the retrieved source. There is no recoverable original to
// port here. What follows is hand-written against the standard SPIM/MARS
// syscall table (1 print_int, 4 print_string, 9 sbrk, 10 exit), which is a
// public, well-documented simulator convention rather than an invented
// API, and it honors every calling contract _translate_instruction assumes
// of these labels (PRINT's $a0 argument already loaded and typed; NEW/
// toString's $a0-in/$v0-out for _alloc/_int_to_string; _string_concat's
// $a0/$a1-in/$v0-out).
const syscallHelpers = `
_print_int:
	li $v0, 1
	syscall
	la $a0, _newline
	li $v0, 4
	syscall
	jr $ra

_print_string:
	li $v0, 4
	syscall
	la $a0, _newline
	li $v0, 4
	syscall
	jr $ra

_print_boolean:
	beq $a0, $zero, _print_boolean_false
	la $a0, _true
	j _print_boolean_emit
_print_boolean_false:
	la $a0, _false
_print_boolean_emit:
	li $v0, 4
	syscall
	la $a0, _newline
	li $v0, 4
	syscall
	jr $ra

_alloc:
	li $v0, 9
	syscall
	jr $ra

_exit:
	li $v0, 10
	syscall

# _int_to_string: $a0 = integer value in, $v0 = new asciiz string address
# out. Writes digits into a 28-byte stack scratch buffer back to front,
# then copies the used portion (plus a leading '-' if negative) into a
# freshly _alloc'd buffer sized to fit exactly.
_int_to_string:
	subu $sp, $sp, 48
	sw $ra, 44($sp)
	sw $s0, 40($sp)
	sw $s1, 36($sp)
	sw $s2, 32($sp)
	sw $s3, 28($sp)

	move $s0, $a0
	li $s3, 0
	bgez $s0, _its_abs_done
	li $s3, 1
	subu $s0, $zero, $s0
_its_abs_done:

	addi $s1, $sp, 28
	li $s2, 0

	bne $s0, $zero, _its_loop
	addi $s1, $s1, -1
	li $t0, 48
	sb $t0, 0($s1)
	addi $s2, $s2, 1
	j _its_digits_done

_its_loop:
	beq $s0, $zero, _its_digits_done
	li $t1, 10
	div $s0, $t1
	mfhi $t2
	mflo $s0
	addi $t2, $t2, 48
	addi $s1, $s1, -1
	sb $t2, 0($s1)
	addi $s2, $s2, 1
	j _its_loop

_its_digits_done:
	beq $s3, $zero, _its_no_sign
	addi $s1, $s1, -1
	li $t0, 45
	sb $t0, 0($s1)
	addi $s2, $s2, 1
_its_no_sign:

	addi $a0, $s2, 1
	jal _alloc
	move $t3, $v0
	move $t4, $s1
	move $t5, $s2

_its_copy_loop:
	beq $t5, $zero, _its_copy_done
	lb $t6, 0($t4)
	sb $t6, 0($t3)
	addi $t4, $t4, 1
	addi $t3, $t3, 1
	addi $t5, $t5, -1
	j _its_copy_loop

_its_copy_done:
	sb $zero, 0($t3)

	lw $ra, 44($sp)
	lw $s0, 40($sp)
	lw $s1, 36($sp)
	lw $s2, 32($sp)
	lw $s3, 28($sp)
	addu $sp, $sp, 48
	jr $ra

# _string_concat: $a0 = str1 address, $a1 = str2 address in, $v0 = new
# asciiz concatenation address out.
_string_concat:
	subu $sp, $sp, 32
	sw $ra, 28($sp)
	sw $s0, 24($sp)
	sw $s1, 20($sp)
	sw $s2, 16($sp)
	sw $s3, 12($sp)

	move $s0, $a0
	move $s1, $a1

	move $t0, $s0
	li $s2, 0
_sc_len1:
	lb $t1, 0($t0)
	beq $t1, $zero, _sc_len1_done
	addi $s2, $s2, 1
	addi $t0, $t0, 1
	j _sc_len1
_sc_len1_done:

	move $t0, $s1
	li $s3, 0
_sc_len2:
	lb $t1, 0($t0)
	beq $t1, $zero, _sc_len2_done
	addi $s3, $s3, 1
	addi $t0, $t0, 1
	j _sc_len2
_sc_len2_done:

	add $t2, $s2, $s3
	addi $a0, $t2, 1
	jal _alloc
	move $t3, $v0

	move $t4, $s0
	move $t5, $v0
_sc_copy1:
	lb $t1, 0($t4)
	beq $t1, $zero, _sc_copy1_done
	sb $t1, 0($t5)
	addi $t4, $t4, 1
	addi $t5, $t5, 1
	j _sc_copy1
_sc_copy1_done:

	move $t4, $s1
_sc_copy2:
	lb $t1, 0($t4)
	beq $t1, $zero, _sc_copy2_done
	sb $t1, 0($t5)
	addi $t4, $t4, 1
	addi $t5, $t5, 1
	j _sc_copy2
_sc_copy2_done:
	sb $zero, 0($t5)

	move $v0, $t3
	lw $ra, 28($sp)
	lw $s0, 24($sp)
	lw $s1, 20($sp)
	lw $s2, 16($sp)
	lw $s3, 12($sp)
	addu $sp, $sp, 32
	jr $ra
`
